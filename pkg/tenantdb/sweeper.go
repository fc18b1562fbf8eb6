package tenantdb

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
)

// Sweepable evicts connections idle for longer than maxIdle.
type Sweepable interface {
	Sweep(maxIdle time.Duration) int
}

// Sweeper periodically sweeps idle tenant connections.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	maxIdle  time.Duration
	log      *slog.Logger
}

func NewSweeper(target Sweepable, interval, maxIdle time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if maxIdle <= 0 {
		maxIdle = DefaultIdleThreshold
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Sweeper{target: target, interval: interval, maxIdle: maxIdle, log: log}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.target.Sweep(s.maxIdle); n > 0 {
				s.log.InfoContext(ctx, "idle tenant connections evicted",
					slog.Int("count", n), slog.Duration("max_idle", s.maxIdle))
			}
		}
	}
}
