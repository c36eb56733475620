package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"seetheplay/observability"
)

// HeartbeatWorker logs process health (CPU, RAM, status) together with the
// engine counters every interval. Diagnostics stay available even when no
// subscriber is connected.
type HeartbeatWorker struct {
	log             *slog.Logger
	interval        time.Duration
	monitoring      *observability.MonitoringManager
	subscriberCount func() int
}

func NewHeartbeatWorker(
	log *slog.Logger,
	interval time.Duration,
	monitoring *observability.MonitoringManager,
	subscriberCount func() int,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:             log,
		interval:        interval,
		monitoring:      monitoring,
		subscriberCount: subscriberCount,
	}
}

// Run executes the main loop of the worker, logging health metrics on every
// interval.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting engine heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.GetLatest()
			w.log.Info("Heartbeat",
				"pid", os.Getpid(),
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"subscribers", w.subscriberCount(),
				"events_played", stats.EventsPlayed,
				"ticks_published", stats.TicksPublished,
				"delivery_failures", stats.DeliveryFailures,
			)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
