package features

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	snapshot *models.FeatureGateSnapshot
	crs      *models.CRSScore
	gateErr  error
	crsErr   error

	// gate, when set, blocks FeatureGate until closed.
	gate chan struct{}

	gateCalls atomic.Int32
	crsCalls  atomic.Int32
}

func (f *fakeSource) FeatureGate(ctx context.Context) (*models.FeatureGateSnapshot, error) {
	f.gateCalls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, f.gateErr
}

func (f *fakeSource) CRSScore(context.Context) (*models.CRSScore, error) {
	f.crsCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crs, f.crsErr
}

func (f *fakeSource) setScore(score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crs = &models.CRSScore{TotalScore: score}
}

func TestRefresh_FetchesBothConcurrently(t *testing.T) {
	src := &fakeSource{
		snapshot: &models.FeatureGateSnapshot{},
		crs:      &models.CRSScore{TotalScore: 65},
	}
	e := NewEngine(nil)
	p := NewPoller(src, e, time.Hour, logging.Nop())

	require.NoError(t, p.Refresh(context.Background()))
	assert.EqualValues(t, 1, src.gateCalls.Load())
	assert.EqualValues(t, 1, src.crsCalls.Load())
	assert.False(t, e.Loading())
	assert.True(t, e.HasAccess(AdvancedJobMatching))
}

func TestRefresh_PartialFailureStillApplies(t *testing.T) {
	src := &fakeSource{gateErr: errors.New("gate down"), crs: &models.CRSScore{TotalScore: 45}}
	e := NewEngine(nil)
	p := NewPoller(src, e, time.Hour, logging.Nop())

	err := p.Refresh(context.Background())
	assert.ErrorIs(t, err, src.gateErr)
	assert.True(t, e.HasAccess(JobMatchBasic))
}

func TestRefresh_CoalescesConcurrentCalls(t *testing.T) {
	src := &fakeSource{snapshot: &models.FeatureGateSnapshot{}, gate: make(chan struct{})}
	p := NewPoller(src, NewEngine(nil), time.Hour, logging.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Refresh(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return src.gateCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.LessOrEqual(t, src.gateCalls.Load(), int32(2))
}

func TestRun_InitialTickAndForeground(t *testing.T) {
	src := &fakeSource{snapshot: &models.FeatureGateSnapshot{}, crs: &models.CRSScore{TotalScore: 30}}
	e := NewEngine(nil)
	p := NewPoller(src, e, time.Hour, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return src.crsCalls.Load() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !e.Loading() }, time.Second, time.Millisecond)
	assert.False(t, e.HasAccess(JobMatchBasic))

	src.setScore(70)
	p.Foreground()
	require.Eventually(t, func() bool { return e.HasAccess(AIInterviewCoach) }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestRun_PollsOnInterval(t *testing.T) {
	src := &fakeSource{snapshot: &models.FeatureGateSnapshot{}}
	p := NewPoller(src, NewEngine(nil), 10*time.Millisecond, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	require.Eventually(t, func() bool { return src.gateCalls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRefresh_CancelledFetchIsNotApplied(t *testing.T) {
	src := &fakeSource{snapshot: &models.FeatureGateSnapshot{}, crs: &models.CRSScore{TotalScore: 90}, gate: make(chan struct{})}
	e := NewEngine(nil)
	p := NewPoller(src, e, time.Hour, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for src.gateCalls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	err := p.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := e.Score()
	assert.False(t, ok)
}
