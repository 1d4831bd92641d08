package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of process resource usage
type RuntimeStats struct {
	GoRoutines    int64
	HeapAlloc     int64
	MemorySystem  int64
	GCCount       uint32
	ProcessUptime time.Duration
}

// ReadRuntimeStats samples the Go runtime
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     int64(memStats.HeapAlloc),
		MemorySystem:  int64(memStats.Sys),
		GCCount:       memStats.NumGC,
		ProcessUptime: time.Since(startTime),
	}
}

// RegisterRuntimeMetrics exposes runtime gauges that are sampled on every
// collection of meter.
func RegisterRuntimeMetrics(meter metric.Meter, startTime time.Time) (metric.Registration, error) {
	goRoutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goroutine gauge: %w", err)
	}

	heapAlloc, err := meter.Int64ObservableGauge(
		"system_memory_heap_bytes",
		metric.WithDescription("Heap memory in use in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create heap gauge: %w", err)
	}

	memorySystem, err := meter.Int64ObservableGauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create system memory gauge: %w", err)
	}

	gcCount, err := meter.Int64ObservableCounter(
		"system_gc_count",
		metric.WithDescription("Total number of garbage collections"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gc counter: %w", err)
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadRuntimeStats(startTime)
		o.ObserveInt64(goRoutines, stats.GoRoutines)
		o.ObserveInt64(heapAlloc, stats.HeapAlloc)
		o.ObserveInt64(memorySystem, stats.MemorySystem)
		o.ObserveInt64(gcCount, int64(stats.GCCount))
		o.ObserveFloat64(uptime, stats.ProcessUptime.Seconds())
		return nil
	}, goRoutines, heapAlloc, memorySystem, gcCount, uptime)
}
