package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/ratelimiter"
)

// Sweeper periodically evicts expired submitter windows from the rate
// limiter so the key map stays bounded by active submitters instead of
// every submitter ever seen.
type Sweeper struct {
	limiter  *ratelimiter.SlidingWindow
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(limiter *ratelimiter.SlidingWindow, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{limiter: limiter, interval: interval, logger: logger}
}

// Run ticks every interval and sweeps stale windows.
// Stops cleanly when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("rate-limit sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("rate-limit sweeper stopping")
			return
		case <-ticker.C:
			if evicted := s.limiter.Sweep(time.Now()); evicted > 0 {
				s.logger.Debug("swept stale submitter windows", zap.Int("evicted", evicted))
			}
		}
	}
}
