// Package workers contains the periodic goroutines the engine runs under
// supervision: the authoritative game clock, the event playback loop and a
// process heartbeat.
package workers

import (
	"context"
	"log/slog"
	"time"
)

// ClockWorker drives the authoritative game clock, one tick per interval.
// Nothing else advances quarters. When the tick callback reports game
// completion the worker signals it and terminates cleanly so the supervisor
// never restarts a finished clock.
type ClockWorker struct {
	log        *slog.Logger
	interval   time.Duration
	tick       func(ctx context.Context) bool
	onComplete func()
}

func NewClockWorker(log *slog.Logger, interval time.Duration, tick func(ctx context.Context) bool, onComplete func()) *ClockWorker {
	return &ClockWorker{log: log, interval: interval, tick: tick, onComplete: onComplete}
}

func (w *ClockWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if w.tick(ctx) {
				w.log.Info("Clock expired, signalling game completion")
				w.onComplete()
				return nil
			}
		}
	}
}
