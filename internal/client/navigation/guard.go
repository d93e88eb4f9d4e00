// Package navigation keeps the current route consistent with the session.
package navigation

import (
	"strings"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
)

const (
	RouteRoot               = "/"
	RouteSplash             = "/splash"
	RouteAuthEntry          = "/auth/login"
	RouteCandidateDashboard = "/candidate/dashboard"
	RouteRecruiterDashboard = "/recruiter/dashboard"
)

// Group is the top-level route subtree a path belongs to.
type Group int

const (
	GroupUnknown Group = iota
	GroupRoot
	GroupSplash
	GroupAuth
	GroupCandidate
	GroupRecruiter
	GroupShared
)

func (g Group) String() string {
	switch g {
	case GroupRoot:
		return "root"
	case GroupSplash:
		return "splash"
	case GroupAuth:
		return "auth"
	case GroupCandidate:
		return "candidate"
	case GroupRecruiter:
		return "recruiter"
	case GroupShared:
		return "shared"
	default:
		return "unknown"
	}
}

// GroupOf classifies path by its first segment.
func GroupOf(path string) Group {
	path = strings.TrimSpace(path)
	if path == "" || path == RouteRoot {
		return GroupRoot
	}

	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	switch first {
	case "splash":
		return GroupSplash
	case "auth":
		return GroupAuth
	case "candidate":
		return GroupCandidate
	case "recruiter":
		return GroupRecruiter
	case "shared":
		return GroupShared
	default:
		return GroupUnknown
	}
}

// Dashboard returns the landing route for role, or "" for unknown roles.
func Dashboard(role models.Role) string {
	switch role {
	case models.RoleCandidate:
		return RouteCandidateDashboard
	case models.RoleRecruiter:
		return RouteRecruiterDashboard
	default:
		return ""
	}
}

type Input struct {
	IsAuthenticated bool
	Role            models.Role
	Group           Group
	IsVerifying     bool
}

// Decide returns the route to redirect to, or ok == false when the current
// route may stay. It never redirects while the session is being verified.
func Decide(in Input) (target string, ok bool) {
	if in.IsVerifying {
		return "", false
	}

	if !in.IsAuthenticated {
		if in.Group == GroupAuth {
			return "", false
		}
		return RouteAuthEntry, true
	}

	home := Dashboard(in.Role)
	if home == "" {
		// Authenticated without a usable role: park on the auth entry.
		if in.Group == GroupAuth {
			return "", false
		}
		return RouteAuthEntry, true
	}

	switch in.Group {
	case GroupShared:
		return "", false
	case GroupCandidate:
		if in.Role == models.RoleCandidate {
			return "", false
		}
	case GroupRecruiter:
		if in.Role == models.RoleRecruiter {
			return "", false
		}
	}
	return home, true
}
