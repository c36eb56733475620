package workers

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// PlaybackWorker feeds catalog events into the game with a random delay
// between minDelay and maxDelay. It terminates cleanly once the catalog is
// exhausted; the clock keeps ticking without it.
type PlaybackWorker struct {
	log      *slog.Logger
	minDelay time.Duration
	maxDelay time.Duration
	playNext func(ctx context.Context) bool
}

func NewPlaybackWorker(log *slog.Logger, minDelay, maxDelay time.Duration, playNext func(ctx context.Context) bool) *PlaybackWorker {
	return &PlaybackWorker{log: log, minDelay: minDelay, maxDelay: maxDelay, playNext: playNext}
}

func (w *PlaybackWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.jitter()):
			if !w.playNext(ctx) {
				w.log.Info("Playback finished")
				return nil
			}
		}
	}
}

func (w *PlaybackWorker) jitter() time.Duration {
	spread := w.maxDelay - w.minDelay
	if spread <= 0 {
		return w.minDelay
	}
	return w.minDelay + time.Duration(rand.Int63n(int64(spread)))
}
