package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Route(ctx context.Context, path string) error
	Features(ctx context.Context) error
	Access(ctx context.Context, featureID string) error
	Refresh(ctx context.Context) error
	Role(ctx context.Context, role string) error
}

// runREPL starts a simple read–eval–print loop for the JobCoach CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that prompt for more input read from
// the same reader. The loop exits at end of input, when ctx is done, or when
// the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                      show available commands
//	  - register                  create an account
//	  - login                     authenticate
//	  - status                    show session and verification state
//	  - route <path>              navigate (the guard may redirect)
//	  - exit | quit               leave the program
//
//	Logged in, additionally:
//	  - features                  list features and whether they are unlocked
//	  - access <id>               check a single feature
//	  - refresh                   refetch feature data now
//	  - role <candidate|recruiter> change the account role
//	  - logout                    log out
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	say := func(args ...any) { fmt.Fprintln(out, args...) }

	for {
		if ctx.Err() != nil {
			return
		}
		say(fmt.Sprintf("jc %s > ", statusFn()))
		line, ok := readLine(reader)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				say("Available commands: status, route <path>, features, access <id>, refresh, role <candidate|recruiter>, logout, exit")
			} else {
				say("Available commands: register, login, status, route <path>, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "status":
			err = a.Status(ctx)

		case "route":
			if len(args) != 1 {
				say("Usage: route <path>")
				continue
			}
			err = a.Route(ctx, args[0])

		case "features":
			err = a.Features(ctx)

		case "access":
			if len(args) != 1 {
				say("Usage: access <feature id>")
				continue
			}
			err = a.Access(ctx, args[0])

		case "refresh":
			err = a.Refresh(ctx)

		case "role":
			if len(args) != 1 {
				say("Usage: role <candidate|recruiter>")
				continue
			}
			err = a.Role(ctx, args[0])

		case "exit", "quit":
			say("Bye!")
			return

		default:
			say("Unknown command:", cmd)
		}

		if err != nil {
			say("Error:", err)
		}
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is still returned; ok is false once input is exhausted.
func readLine(r *bufio.Reader) (string, bool) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
