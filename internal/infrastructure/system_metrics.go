package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats is a snapshot of Go runtime resource usage.
type SystemStats struct {
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	SysBytes       uint64  `json:"sys_bytes"`
	NumGC          uint32  `json:"num_gc"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// ReadSystemStats reads the runtime counters.
func ReadSystemStats(start time.Time) SystemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: m.HeapAlloc,
		SysBytes:       m.Sys,
		NumGC:          m.NumGC,
		UptimeSeconds:  time.Since(start).Seconds(),
	}
}

// RegisterSystemMetrics exports runtime stats as observable gauges, read
// at collection time.
func RegisterSystemMetrics(meter metric.Meter, start time.Time) error {
	goroutines, err := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return err
	}
	heap, err := meter.Int64ObservableGauge("system_memory_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated by the Go runtime"),
		metric.WithUnit("By"))
	if err != nil {
		return err
	}
	uptime, err := meter.Float64ObservableGauge("system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadSystemStats(start)
		o.ObserveInt64(goroutines, int64(stats.Goroutines))
		o.ObserveInt64(heap, int64(stats.HeapAllocBytes))
		o.ObserveFloat64(uptime, stats.UptimeSeconds)
		return nil
	}, goroutines, heap, uptime)
	return err
}
