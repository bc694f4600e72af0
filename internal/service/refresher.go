package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ShelterRefresher reloads the shelter index on a fixed interval.
type ShelterRefresher struct {
	svc      *Service
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewShelterRefresher creates a refresher. A nil clock uses the real clock.
func NewShelterRefresher(svc *Service, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *ShelterRefresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ShelterRefresher{svc: svc, interval: interval, clock: clock, logger: logger}
}

// Run refreshes once immediately and then on every tick until ctx is done.
// Failed refreshes are logged and the previous index is kept.
func (r *ShelterRefresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shelter refresher stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			r.refresh(ctx)
		}
	}
}

func (r *ShelterRefresher) refresh(ctx context.Context) {
	n, err := r.svc.RefreshShelters(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("shelter refresh failed", "error", err)
		}
		return
	}
	r.logger.Info("shelters refreshed", "count", n)
}
