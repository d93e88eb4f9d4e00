// Package features decides which features the user may use.
//
// The server's feature-gate snapshot is authoritative when it lists any
// available features. Otherwise access is derived from the CRS score and a
// local threshold table. With neither, only BasicFeatures are granted, and
// only after the server has failed; everything else fails closed. While the
// server keeps failing, the last snapshot stays authoritative only until it
// is older than the engine's stale limit.
package features

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
)

// DefaultStaleAfter is how old the last good snapshot may get while fetches
// fail before access falls back to the score table.
const DefaultStaleAfter = 2 * DefaultPollInterval

// Requirement describes what is needed to unlock a feature.
type Requirement struct {
	RequiredLevel        int
	RequiredLevelDisplay string
}

// Update is the result of one fetch round. A nil value with a nil error
// means that part was not fetched.
type Update struct {
	Snapshot    *models.FeatureGateSnapshot
	SnapshotErr error
	CRS         *models.CRSScore
	CRSErr      error
}

type Engine struct {
	table      ThresholdTable
	staleAfter time.Duration
	now        func() time.Time

	mu         sync.RWMutex
	generation uint64
	loading    bool
	snapshot   *models.FeatureGateSnapshot
	snapshotAt time.Time
	crs        *models.CRSScore
	remoteErr  error
}

type EngineOption func(*Engine)

// WithStaleAfter sets how long a snapshot stays authoritative once fetches
// fail. Zero or less drops its authority on the first failure.
func WithStaleAfter(d time.Duration) EngineOption {
	return func(e *Engine) { e.staleAfter = d }
}

func NewEngine(table ThresholdTable, opts ...EngineOption) *Engine {
	if table == nil {
		table = DefaultTable
	}
	e := &Engine{table: table, staleAfter: DefaultStaleAfter, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// BeginLoad marks a fetch as in flight and returns the token to pass to Apply.
func (e *Engine) BeginLoad() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = true
	return e.generation
}

// Apply records a fetch result. Results started before the last Reset are
// dropped. A new snapshot replaces the old one; on error the last good
// snapshot is kept and the error is remembered.
func (e *Engine) Apply(generation uint64, u Update) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if generation != e.generation {
		return false
	}
	e.loading = false

	if u.SnapshotErr != nil {
		e.remoteErr = u.SnapshotErr
	} else if u.Snapshot != nil {
		e.snapshot = u.Snapshot
		e.snapshotAt = e.now()
		e.remoteErr = nil
	}

	if u.CRSErr == nil && u.CRS != nil {
		e.crs = u.CRS
	}
	return true
}

// Reset forgets everything, e.g. on logout.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.loading = false
	e.snapshot = nil
	e.snapshotAt = time.Time{}
	e.crs = nil
	e.remoteErr = nil
}

// Score returns the known CRS score, preferring the dedicated CRS query.
func (e *Engine) Score() (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.score()
}

func (e *Engine) score() (int, bool) {
	if e.crs != nil {
		return e.crs.TotalScore, true
	}
	if e.snapshot != nil && e.snapshot.CRSScore != nil {
		return *e.snapshot.CRSScore, true
	}
	return 0, false
}

// Snapshot returns the last applied server snapshot or nil.
func (e *Engine) Snapshot() *models.FeatureGateSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

func (e *Engine) Loading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

func (e *Engine) HasAccess(featureID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasAccess(featureID)
}

func (e *Engine) hasAccess(featureID string) bool {
	score, scoreKnown := e.score()

	if e.loading && !scoreKnown {
		return false
	}

	if snap := e.authoritative(); snap != nil && len(snap.AvailableFeatures) > 0 {
		return snap.Available(featureID)
	}

	if scoreKnown {
		lvl, ok := e.table[featureID]
		return ok && score >= lvl.MinScore
	}

	if e.remoteErr != nil {
		_, basic := BasicFeatures[featureID]
		return basic
	}
	return false
}

// authoritative returns the snapshot unless fetches are failing and it has
// outlived staleAfter.
func (e *Engine) authoritative() *models.FeatureGateSnapshot {
	if e.snapshot == nil || e.remoteErr == nil {
		return e.snapshot
	}
	if e.now().Sub(e.snapshotAt) >= e.staleAfter {
		return nil
	}
	return e.snapshot
}

// Requirement returns nil when featureID is accessible or unknown. Otherwise
// it reports the server's locked entry, falling back to the local table.
func (e *Engine) Requirement(featureID string) *Requirement {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.hasAccess(featureID) {
		return nil
	}
	if locked, ok := e.authoritative().Locked(featureID); ok {
		return &Requirement{RequiredLevel: locked.RequiredLevel, RequiredLevelDisplay: locked.RequiredLevelDisplay}
	}
	if lvl, ok := e.table[featureID]; ok {
		return &Requirement{RequiredLevel: lvl.Number, RequiredLevelDisplay: lvl.Name}
	}
	return nil
}
