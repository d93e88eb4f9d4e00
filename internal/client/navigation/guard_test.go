package navigation

import (
	"testing"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestGroupOf(t *testing.T) {
	tests := map[string]Group{
		"":                      GroupRoot,
		"/":                     GroupRoot,
		"/splash":               GroupSplash,
		"/auth/login":           GroupAuth,
		"/auth/register":        GroupAuth,
		"/candidate/dashboard":  GroupCandidate,
		"/recruiter/jobs/42":    GroupRecruiter,
		"/shared/settings":      GroupShared,
		"/candidates/dashboard": GroupUnknown,
		"/nowhere":              GroupUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, GroupOf(path), path)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantTarget string
		wantOK     bool
	}{
		{
			name:       "anonymous on dashboard goes to entry",
			in:         Input{Group: GroupCandidate},
			wantTarget: RouteAuthEntry, wantOK: true,
		},
		{
			name:       "anonymous on splash goes to entry",
			in:         Input{Group: GroupSplash},
			wantTarget: RouteAuthEntry, wantOK: true,
		},
		{
			name: "anonymous inside auth stays",
			in:   Input{Group: GroupAuth},
		},
		{
			name:       "candidate in auth goes home",
			in:         Input{IsAuthenticated: true, Role: models.RoleCandidate, Group: GroupAuth},
			wantTarget: RouteCandidateDashboard, wantOK: true,
		},
		{
			name:       "recruiter on splash goes home",
			in:         Input{IsAuthenticated: true, Role: models.RoleRecruiter, Group: GroupSplash},
			wantTarget: RouteRecruiterDashboard, wantOK: true,
		},
		{
			name:       "recruiter in candidate routes",
			in:         Input{IsAuthenticated: true, Role: models.RoleRecruiter, Group: GroupCandidate},
			wantTarget: RouteRecruiterDashboard, wantOK: true,
		},
		{
			name:       "candidate in recruiter routes",
			in:         Input{IsAuthenticated: true, Role: models.RoleCandidate, Group: GroupRecruiter},
			wantTarget: RouteCandidateDashboard, wantOK: true,
		},
		{
			name: "candidate in own routes",
			in:   Input{IsAuthenticated: true, Role: models.RoleCandidate, Group: GroupCandidate},
		},
		{
			name: "recruiter in own routes",
			in:   Input{IsAuthenticated: true, Role: models.RoleRecruiter, Group: GroupRecruiter},
		},
		{
			name: "shared routes allow any role",
			in:   Input{IsAuthenticated: true, Role: models.RoleRecruiter, Group: GroupShared},
		},
		{
			name:       "unknown route goes home",
			in:         Input{IsAuthenticated: true, Role: models.RoleCandidate, Group: GroupUnknown},
			wantTarget: RouteCandidateDashboard, wantOK: true,
		},
		{
			name:       "authenticated without role parks on entry",
			in:         Input{IsAuthenticated: true, Group: GroupCandidate},
			wantTarget: RouteAuthEntry, wantOK: true,
		},
		{
			name: "authenticated without role inside auth stays",
			in:   Input{IsAuthenticated: true, Group: GroupAuth},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := Decide(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestDecide_NeverRedirectsWhileVerifying(t *testing.T) {
	roles := []models.Role{"", models.RoleCandidate, models.RoleRecruiter, "admin"}
	groups := []Group{GroupUnknown, GroupRoot, GroupSplash, GroupAuth, GroupCandidate, GroupRecruiter, GroupShared}

	for _, auth := range []bool{false, true} {
		for _, role := range roles {
			for _, g := range groups {
				target, ok := Decide(Input{IsAuthenticated: auth, Role: role, Group: g, IsVerifying: true})
				assert.False(t, ok, "auth=%v role=%q group=%s", auth, role, g)
				assert.Empty(t, target)
			}
		}
	}
}

func TestDecide_RedirectTargetIsStable(t *testing.T) {
	// Applying a redirect must not trigger another one.
	roles := []models.Role{"", models.RoleCandidate, models.RoleRecruiter}
	groups := []Group{GroupUnknown, GroupRoot, GroupSplash, GroupAuth, GroupCandidate, GroupRecruiter, GroupShared}

	for _, auth := range []bool{false, true} {
		for _, role := range roles {
			for _, g := range groups {
				target, ok := Decide(Input{IsAuthenticated: auth, Role: role, Group: g})
				if !ok {
					continue
				}
				_, again := Decide(Input{IsAuthenticated: auth, Role: role, Group: GroupOf(target)})
				assert.False(t, again, "auth=%v role=%q group=%s target=%s", auth, role, g, target)
			}
		}
	}
}
