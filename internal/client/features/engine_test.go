package features

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func withScore(score int) *Engine {
	e := NewEngine(nil)
	e.Apply(e.BeginLoad(), Update{CRS: &models.CRSScore{TotalScore: score}, Snapshot: &models.FeatureGateSnapshot{}})
	return e
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, LevelFoundation, LevelForScore(0))
	assert.Equal(t, LevelFoundation, LevelForScore(40))
	assert.Equal(t, LevelDeveloping, LevelForScore(41))
	assert.Equal(t, LevelDeveloping, LevelForScore(60))
	assert.Equal(t, LevelProficient, LevelForScore(61))
	assert.Equal(t, LevelExpert, LevelForScore(81))
	assert.Equal(t, LevelExpert, LevelForScore(100))
}

func TestHasAccess_ScoreBoundary(t *testing.T) {
	assert.False(t, withScore(40).HasAccess(JobMatchBasic))
	assert.True(t, withScore(41).HasAccess(JobMatchBasic))
	assert.False(t, withScore(60).HasAccess(AIInterviewCoach))
	assert.True(t, withScore(61).HasAccess(AIInterviewCoach))
	assert.False(t, withScore(80).HasAccess(PriorityApplications))
	assert.True(t, withScore(81).HasAccess(PriorityApplications))
}

func TestHasAccess_EmptySnapshotUsesScore(t *testing.T) {
	e := withScore(65)

	assert.True(t, e.HasAccess(AdvancedJobMatching))
	assert.False(t, e.HasAccess(MentorAccess))
	assert.True(t, e.HasAccess(ProfileView))
	assert.False(t, e.HasAccess("teleportation"))
}

func TestHasAccess_SnapshotIsAuthoritative(t *testing.T) {
	e := NewEngine(nil)
	e.Apply(e.BeginLoad(), Update{
		Snapshot: &models.FeatureGateSnapshot{
			AvailableFeatures: []models.AvailableFeature{{FeatureID: MentorAccess}},
		},
		CRS: &models.CRSScore{TotalScore: 10},
	})

	// the server grants mentor access despite the low score
	assert.True(t, e.HasAccess(MentorAccess))
	// and withholds a Foundation feature it does not list
	assert.False(t, e.HasAccess(ProfileView))
}

func TestHasAccess_ScoreFromSnapshot(t *testing.T) {
	e := NewEngine(nil)
	e.Apply(e.BeginLoad(), Update{
		Snapshot: &models.FeatureGateSnapshot{CRSScore: intPtr(62)},
		CRSErr:   errors.New("crs down"),
	})

	score, ok := e.Score()
	require.True(t, ok)
	assert.Equal(t, 62, score)
	assert.True(t, e.HasAccess(SalaryInsights))
}

func TestHasAccess_LoadingWithoutScoreFailsClosed(t *testing.T) {
	e := NewEngine(nil)
	e.BeginLoad()

	assert.True(t, e.Loading())
	assert.False(t, e.HasAccess(ProfileView))
	assert.False(t, e.HasAccess(JobMatchBasic))
}

func TestHasAccess_LoadingWithKnownScore(t *testing.T) {
	e := withScore(50)
	e.BeginLoad()

	assert.True(t, e.HasAccess(JobMatchBasic))
}

func TestHasAccess_RemoteErrorAllowsOnlyBasics(t *testing.T) {
	e := NewEngine(nil)
	e.Apply(e.BeginLoad(), Update{SnapshotErr: errors.New("gate down"), CRSErr: errors.New("crs down")})

	for id := range BasicFeatures {
		assert.True(t, e.HasAccess(id), id)
	}
	assert.False(t, e.HasAccess(JobMatchBasic))
	assert.False(t, e.HasAccess("teleportation"))
}

func TestHasAccess_NoDataFailsClosed(t *testing.T) {
	e := NewEngine(nil)
	assert.False(t, e.HasAccess(ProfileView))
	assert.Nil(t, e.Snapshot())
}

func TestApply_ReplacesSnapshotAndKeepsItOnError(t *testing.T) {
	e := NewEngine(nil)
	first := &models.FeatureGateSnapshot{AvailableFeatures: []models.AvailableFeature{{FeatureID: JobMatchBasic}}}
	second := &models.FeatureGateSnapshot{AvailableFeatures: []models.AvailableFeature{{FeatureID: SalaryInsights}}}

	e.Apply(e.BeginLoad(), Update{Snapshot: first})
	e.Apply(e.BeginLoad(), Update{Snapshot: second})
	assert.False(t, e.HasAccess(JobMatchBasic))
	assert.True(t, e.HasAccess(SalaryInsights))

	e.Apply(e.BeginLoad(), Update{SnapshotErr: errors.New("timeout")})
	assert.Same(t, second, e.Snapshot())
	assert.True(t, e.HasAccess(SalaryInsights))
}

func TestHasAccess_StaleSnapshotFallsBackToScore(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(nil, WithStaleAfter(5*time.Minute))
	e.now = func() time.Time { return now }

	snap := &models.FeatureGateSnapshot{
		AvailableFeatures: []models.AvailableFeature{{FeatureID: MentorAccess}},
		LockedFeatures:    []models.LockedFeature{{FeatureID: SalaryInsights, RequiredLevel: 9, RequiredLevelDisplay: "Server"}},
	}
	e.Apply(e.BeginLoad(), Update{Snapshot: snap, CRS: &models.CRSScore{TotalScore: 45}})
	e.Apply(e.BeginLoad(), Update{SnapshotErr: errors.New("gateway timeout"), CRS: &models.CRSScore{TotalScore: 45}})

	now = now.Add(4 * time.Minute)
	assert.True(t, e.HasAccess(MentorAccess), "recent snapshot still authoritative")
	assert.Equal(t, &Requirement{RequiredLevel: 9, RequiredLevelDisplay: "Server"}, e.Requirement(SalaryInsights))

	now = now.Add(time.Minute)
	assert.False(t, e.HasAccess(MentorAccess))
	assert.True(t, e.HasAccess(JobMatchBasic), "score 45 unlocks Developing")
	lvl := DefaultTable[SalaryInsights]
	assert.Equal(t, &Requirement{RequiredLevel: lvl.Number, RequiredLevelDisplay: lvl.Name}, e.Requirement(SalaryInsights))

	e.Apply(e.BeginLoad(), Update{Snapshot: snap})
	assert.True(t, e.HasAccess(MentorAccess), "fresh snapshot restores authority")
}

func TestHasAccess_ZeroStaleAfterDropsSnapshotOnFailure(t *testing.T) {
	e := NewEngine(nil, WithStaleAfter(0))
	e.Apply(e.BeginLoad(), Update{Snapshot: &models.FeatureGateSnapshot{
		AvailableFeatures: []models.AvailableFeature{{FeatureID: MentorAccess}},
	}})
	require.True(t, e.HasAccess(MentorAccess))

	e.Apply(e.BeginLoad(), Update{SnapshotErr: errors.New("down")})
	assert.False(t, e.HasAccess(MentorAccess))
	_, basic := BasicFeatures[ProfileView]
	require.True(t, basic)
	assert.True(t, e.HasAccess(ProfileView))
}

func TestReset_DropsInFlightResults(t *testing.T) {
	e := withScore(90)
	gen := e.BeginLoad()
	e.Reset()

	applied := e.Apply(gen, Update{CRS: &models.CRSScore{TotalScore: 90}})
	assert.False(t, applied)
	_, ok := e.Score()
	assert.False(t, ok)
	assert.False(t, e.HasAccess(MentorAccess))
}

func TestRequirement(t *testing.T) {
	e := NewEngine(nil)
	e.Apply(e.BeginLoad(), Update{
		Snapshot: &models.FeatureGateSnapshot{
			AvailableFeatures: []models.AvailableFeature{{FeatureID: JobMatchBasic}},
			LockedFeatures: []models.LockedFeature{
				{FeatureID: MentorAccess, RequiredLevel: 4, RequiredLevelDisplay: "Expert (server)"},
			},
		},
	})

	assert.Nil(t, e.Requirement(JobMatchBasic))
	assert.Equal(t, &Requirement{RequiredLevel: 4, RequiredLevelDisplay: "Expert (server)"}, e.Requirement(MentorAccess))
	assert.Equal(t, &Requirement{RequiredLevel: 3, RequiredLevelDisplay: "Proficient"}, e.Requirement(SalaryInsights))
	assert.Nil(t, e.Requirement("teleportation"))
}
