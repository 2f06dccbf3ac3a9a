package social

import (
	"context"
	"log/slog"
	"time"
)

const sweepBatch = 200

// Sweeper delivers due twenty-day milestones on a timer, so rooms nobody
// opens still get their message.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	batch    int
	log      *slog.Logger
}

// NewSweeper builds a Sweeper; interval <= 0 falls back to ten minutes.
func NewSweeper(engine *Engine, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{engine: engine, interval: interval, batch: sweepBatch, log: log.With("component", "milestone-sweeper")}
}

// Run sweeps until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.SweepOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("milestone sweep failed", "err", err)
		} else if n > 0 {
			s.log.Info("milestone sweep delivered", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce delivers every milestone currently due and returns how many
// this call delivered.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	e := s.engine
	cutoff := e.now().Add(-e.opts.MilestoneAfter)
	delivered := 0

	for {
		ids, err := e.rooms.ListMilestoneDue(ctx, cutoff, s.batch)
		if err != nil {
			return delivered, err
		}
		progressed := false
		for _, id := range ids {
			ok, err := e.checkMilestone(ctx, id, "sweep")
			if err != nil {
				return delivered, err
			}
			if ok {
				delivered++
				progressed = true
			}
		}
		// a batch where every room was claimed elsewhere would repeat forever
		if len(ids) < s.batch || !progressed {
			return delivered, nil
		}
	}
}
