package observability

import (
	"runtime"
	"sync/atomic"
)

// EngineStats aggregates the counters exposed by the diagnostics endpoint.
type EngineStats struct {
	EventsPlayed     uint64 `json:"events_played"`
	TicksPublished   uint64 `json:"ticks_published"`
	BroadcastsSent   uint64 `json:"broadcasts_sent"`
	DeliveryFailures uint64 `json:"delivery_failures"`
	Evictions        uint64 `json:"subscribers_evicted"`
	Resets           uint64 `json:"resets"`
	AllocMemMb       uint64 `json:"alloc_mem_mb"`
	NumGC            uint32 `json:"num_gc"`
}

// MonitoringManager collects engine telemetry with atomic counters so the
// periodic tasks never contend on a lock for bookkeeping.
type MonitoringManager struct {
	eventsPlayed     atomic.Uint64
	ticksPublished   atomic.Uint64
	broadcastsSent   atomic.Uint64
	deliveryFailures atomic.Uint64
	evictions        atomic.Uint64
	resets           atomic.Uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (m *MonitoringManager) EventPlayed()            { m.eventsPlayed.Add(1) }
func (m *MonitoringManager) TickPublished()          { m.ticksPublished.Add(1) }
func (m *MonitoringManager) BroadcastSent()          { m.broadcastsSent.Add(1) }
func (m *MonitoringManager) DeliveryFailed()         { m.deliveryFailures.Add(1) }
func (m *MonitoringManager) SubscriberEvicted(n int) { m.evictions.Add(uint64(n)) }
func (m *MonitoringManager) Reset()                  { m.resets.Add(1) }

// GetLatest snapshots every counter plus current memory stats.
func (m *MonitoringManager) GetLatest() EngineStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return EngineStats{
		EventsPlayed:     m.eventsPlayed.Load(),
		TicksPublished:   m.ticksPublished.Load(),
		BroadcastsSent:   m.broadcastsSent.Load(),
		DeliveryFailures: m.deliveryFailures.Load(),
		Evictions:        m.evictions.Load(),
		Resets:           m.resets.Load(),
		AllocMemMb:       mem.Alloc / 1024 / 1024,
		NumGC:            mem.NumGC,
	}
}
