package otp

import (
	"context"
	"errors"
	"time"

	"github.com/tech-arch1tect/verify/services/logging"
	"go.uber.org/zap"
)

// Reaper deletes unused, expired records on a fixed interval. The first
// sweep runs immediately at start. A failed sweep never stops the schedule.
type Reaper struct {
	repo     Repository
	logger   *logging.Service
	interval time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewReaper(repo Repository, interval time.Duration, logger *logging.Service) *Reaper {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Reaper{
		repo:     repo,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (r *Reaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.run(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (r *Reaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)

	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	now := r.now().UTC()
	if err := r.repo.DeleteExpired(ctx, now); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("failed to clean up expired otp records", zap.Error(err))
		return
	}

	r.logger.Debug("otp cleanup executed", zap.Time("timestamp", now))
}
