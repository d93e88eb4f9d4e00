package features

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultPollInterval = 2 * time.Minute

// Source is the part of the backend API the poller reads.
type Source interface {
	FeatureGate(ctx context.Context) (*models.FeatureGateSnapshot, error)
	CRSScore(ctx context.Context) (*models.CRSScore, error)
}

// Poller keeps an Engine fed with fresh server data.
type Poller struct {
	src      Source
	engine   *Engine
	interval time.Duration
	logger   logging.Logger

	flight     singleflight.Group
	foreground chan struct{}
}

func NewPoller(src Source, engine *Engine, interval time.Duration, logger logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		src:        src,
		engine:     engine,
		interval:   interval,
		logger:     logger.With("component", "feature_poller"),
		foreground: make(chan struct{}, 1),
	}
}

// Run fetches immediately, then on every tick and Foreground call, until ctx
// is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.refreshLogged(ctx)
		case <-p.foreground:
			p.refreshLogged(ctx)
		}
	}
}

// Foreground requests a refetch from the running loop. Requests made while
// one is pending are merged.
func (p *Poller) Foreground() {
	select {
	case p.foreground <- struct{}{}:
	default:
	}
}

// Refresh fetches now. Concurrent calls share one fetch.
func (p *Poller) Refresh(ctx context.Context) error {
	_, err, _ := p.flight.Do("refresh", func() (any, error) {
		return nil, p.fetch(ctx)
	})
	return err
}

func (p *Poller) refreshLogged(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warn(ctx, "feature gate refresh failed", "error", err)
	}
}

func (p *Poller) fetch(ctx context.Context) error {
	gen := p.engine.BeginLoad()

	var (
		g   errgroup.Group
		upd Update
	)
	g.Go(func() error {
		upd.Snapshot, upd.SnapshotErr = p.src.FeatureGate(ctx)
		return upd.SnapshotErr
	})
	g.Go(func() error {
		upd.CRS, upd.CRSErr = p.src.CRSScore(ctx)
		return upd.CRSErr
	})
	waitErr := g.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if p.engine.Apply(gen, upd) {
		p.logger.Debug(ctx, "feature gate updated", "snapshot_err", upd.SnapshotErr, "crs_err", upd.CRSErr)
	}
	if waitErr != nil {
		return errors.Join(upd.SnapshotErr, upd.CRSErr)
	}
	return nil
}
