package store

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultSweepInterval is used when NewHousekeeper gets no interval.
	DefaultSweepInterval = time.Hour

	sweepTimeout = 30 * time.Second
)

// Housekeeper purges expired records from a Sweeper on a fixed interval, so
// an abandoned session does not linger on disk after its tokens are dead.
type Housekeeper struct {
	sweeper  Sweeper
	logger   *slog.Logger
	interval time.Duration
	onSweep  func(deleted int64)

	cancel context.CancelFunc
	done   chan struct{}
}

func NewHousekeeper(sweeper Sweeper, logger *slog.Logger, interval time.Duration) *Housekeeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Housekeeper{
		sweeper:  sweeper,
		logger:   logger.With("component", "housekeeper"),
		interval: interval,
	}
}

// OnSweep registers fn to receive the number of records each pass deleted.
// Must be called before Start.
func (h *Housekeeper) OnSweep(fn func(deleted int64)) {
	h.onSweep = fn
}

// Start sweeps once, then again every interval until ctx ends or Stop is
// called.
func (h *Housekeeper) Start(ctx context.Context) {
	if h.done != nil {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})

	h.logger.Info("housekeeper started", "interval", h.interval)
	go h.loop(ctx)
}

// Stop waits for an in-progress sweep to finish. Safe to call more than once
// and before Start.
func (h *Housekeeper) Stop() {
	if h.done == nil {
		return
	}
	h.cancel()
	<-h.done
}

// Sweep runs one purge pass.
func (h *Housekeeper) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := h.sweeper.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if h.onSweep != nil {
		h.onSweep(n)
	}
	return n, nil
}

func (h *Housekeeper) loop(ctx context.Context) {
	defer close(h.done)
	defer h.logger.Info("housekeeper stopped")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		// The purge must not be cut short by shutdown once it has begun.
		n, err := h.Sweep(context.WithoutCancel(ctx))
		if err != nil {
			h.logger.Error("sweep failed", "error", err)
		} else if n > 0 {
			h.logger.Debug("expired session records purged", "deleted", n)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
