package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"seetheplay/contract"
	"seetheplay/message"
	"seetheplay/observability"
)

// Broadcaster fans one message out to every registered subscriber.
//
// Delivery is best effort: attempts run concurrently under a per-subscriber
// timeout, failures are swallowed and logged, and failed subscribers are
// evicted after the pass. No message is ever retried. A broadcast always
// iterates a stable snapshot of the registry, never the live map, so
// register/unregister calls arriving mid-pass cannot corrupt the iteration.
//
// Broadcaster is safe for concurrent use by multiple goroutines.
type Broadcaster struct {
	mu          sync.RWMutex
	log         *slog.Logger
	subscribers map[string]contract.Subscriber
	sendTimeout time.Duration
	monitoring  *observability.MonitoringManager
}

func NewBroadcaster(log *slog.Logger, sendTimeout time.Duration, monitoring *observability.MonitoringManager) *Broadcaster {
	return &Broadcaster{
		log:         log,
		subscribers: make(map[string]contract.Subscriber),
		sendTimeout: sendTimeout,
		monitoring:  monitoring,
	}
}

func (b *Broadcaster) Register(sub contract.Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[sub.ID()] = sub
	b.log.Info("Subscriber connected", "id", sub.ID(), "total", len(b.subscribers))
}

func (b *Broadcaster) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[id]; !ok {
		return
	}
	delete(b.subscribers, id)
	b.log.Info("Subscriber disconnected", "id", id, "total", len(b.subscribers))
}

func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Broadcast delivers msg to every current subscriber. One slow or dead
// subscriber never delays the others: each delivery runs in its own
// goroutine bounded by the send timeout, and whoever fails is removed from
// the registry once the whole pass is over.
func (b *Broadcaster) Broadcast(ctx context.Context, msg message.Outbound) {
	b.mu.RLock()
	snapshot := lo.Values(b.subscribers)
	b.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}

	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
		failed   []string
	)

	for _, sub := range snapshot {
		wg.Add(1)
		go func(sub contract.Subscriber) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
			defer cancel()

			if err := sub.Send(sendCtx, msg); err != nil {
				b.log.Warn("Delivery failed, evicting subscriber",
					"id", sub.ID(), "type", msg.MessageType(), "error", err)
				b.monitoring.DeliveryFailed()
				failedMu.Lock()
				failed = append(failed, sub.ID())
				failedMu.Unlock()
			}
		}(sub)
	}
	wg.Wait()

	if len(failed) > 0 {
		b.evict(failed)
	}
	b.monitoring.BroadcastSent()
}

func (b *Broadcaster) evict(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		if sub, ok := b.subscribers[id]; ok {
			_ = sub.Close()
			delete(b.subscribers, id)
		}
	}
	b.monitoring.SubscriberEvicted(len(ids))
}
