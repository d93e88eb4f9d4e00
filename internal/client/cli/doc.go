// Package cli provides the interactive JobCoach terminal client.
//
// It drives the session core from a REPL: login and registration (including
// the blocking consent prompt), logout, role assignment, route navigation
// through the guard, and feature access queries. The REPL is started via
// App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
