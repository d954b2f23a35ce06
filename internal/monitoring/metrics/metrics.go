// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics provides performance monitoring and observability for the
// weak-reference container.
//
// This package implements thread-safe metrics collection using a buffered
// event channel and ring buffers. It tracks operation counts, operation
// latencies, sweep activity, and the live-entry population, enabling
// production monitoring of containers that are expected to shrink on their
// own as referents are reclaimed.
//
// # Key Features
//
//   - Thread-safe collection using a buffered channel and background processing
//   - Operation count tracking (Add, Remove, Contains, Len, Iterate, Sweep)
//   - Latency measurement with ring buffer storage for historical data
//   - Sweep effectiveness tracking: full scans vs epoch-gated skips
//   - Swept-entry totals showing how much the collector reclaimed
//   - Live-entry gauge updated after every sweep decision
//   - Bounded memory usage with ring buffers
//
// # Usage Examples
//
// Creating and using metrics:
//
//	// Create a new metrics instance
//	m := metrics.NewMetrics()
//
//	// Record operation metrics
//	start := time.Now()
//	// ... perform operation ...
//	m.RecordAdd(time.Since(start))
//
//	// Record sweep outcomes
//	m.RecordSweep(duration, swept)
//	m.RecordSweepSkipped()
//
//	// Get metrics for monitoring
//	stats := m.GetStats()
//	fmt.Printf("Adds: %d, Avg latency: %v\n",
//	    stats.Operations.Add, stats.Latency.Add.Mean)
//
//	// Clean up when done
//	m.Close()
//
// # Performance Characteristics
//
//   - **Fast Operation Recording**: Non-blocking channel sends for minimal overhead
//   - **Background Processing**: Events processed asynchronously off the hot path
//   - **Bounded Memory**: Ring buffers prevent unbounded memory growth
//   - **Event Loss Protection**: Non-blocking sends prevent operation blocking
//
// # Dangers and Warnings
//
//   - **Background Goroutine**: Requires proper cleanup with Close() method
//   - **Event Loss**: If the buffer is full, events are dropped rather than blocking
//   - **Stats Latency**: Stats may be slightly delayed due to background processing
//   - **Memory Overhead**: Ring buffers consume fixed memory regardless of usage
//
// # Thread Safety
//
// All metrics operations are thread-safe and can be called concurrently from
// multiple goroutines. Background processing ensures consistency without
// blocking the recording side.
//
// # Integration with Monitoring Systems
//
// GetStats returns a structured snapshot for programmatic export, ExportJSON
// renders it as JSON, and the prometheus.go bridge registers the snapshot
// source with a Prometheus registry for scraping.
package metrics

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// LatencyStats provides comprehensive latency statistics
type LatencyStats struct {
	Count uint64        `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	P999  time.Duration `json:"p999"`
}

// OperationCounts tracks counts for all operation types
type OperationCounts struct {
	Add         uint64 `json:"add"`
	Remove      uint64 `json:"remove"`
	Contains    uint64 `json:"contains"`
	Len         uint64 `json:"len"`
	Iterate     uint64 `json:"iterate"`
	Clear       uint64 `json:"clear"`
	BatchAdd    uint64 `json:"batch_add"`
	BatchRemove uint64 `json:"batch_remove"`
}

// SweepCounts tracks how often sweeps ran and what they reclaimed
type SweepCounts struct {
	Scans        uint64 `json:"scans"`
	Skipped      uint64 `json:"skipped"`
	SweptEntries uint64 `json:"swept_entries"`
}

// LatencyMetrics tracks latency data for all operations
type LatencyMetrics struct {
	Add      LatencyStats `json:"add"`
	Remove   LatencyStats `json:"remove"`
	Contains LatencyStats `json:"contains"`
	Len      LatencyStats `json:"len"`
	Iterate  LatencyStats `json:"iterate"`
	Sweep    LatencyStats `json:"sweep"`
}

// MetricsSnapshot provides a complete snapshot of all metrics
type MetricsSnapshot struct {
	Operations    OperationCounts `json:"operations"`
	Sweeps        SweepCounts     `json:"sweeps"`
	LiveEntries   uint64          `json:"live_entries"`
	Latency       LatencyMetrics  `json:"latency"`
	Configuration MetricsConfig   `json:"config"`
}

// MetricEvent represents a single metric event
type MetricEvent struct {
	Op        string
	Duration  time.Duration
	Swept     int
	Batch     int
	Timestamp time.Time
}

// DurationRingBuffer implements a thread-safe bounded ring buffer for time.Duration
type DurationRingBuffer struct {
	buffer []time.Duration
	head   int
	tail   int
	size   int
	count  int
	mu     sync.RWMutex
}

// NewDurationRingBuffer creates a new ring buffer with specified capacity
func NewDurationRingBuffer(capacity int) *DurationRingBuffer {
	return &DurationRingBuffer{
		buffer: make([]time.Duration, capacity),
		size:   capacity,
	}
}

// Push adds an item to the ring buffer
func (rb *DurationRingBuffer) Push(item time.Duration) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.buffer[rb.tail] = item
	rb.tail = (rb.tail + 1) % rb.size

	if rb.count < rb.size {
		rb.count++
	} else {
		rb.head = (rb.head + 1) % rb.size
	}
}

// GetAverage calculates the average of the values in the buffer
func (rb *DurationRingBuffer) GetAverage() time.Duration {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.count == 0 {
		return 0
	}

	var total time.Duration
	for i := 0; i < rb.count; i++ {
		idx := (rb.head + i) % rb.size
		total += rb.buffer[idx]
	}

	return total / time.Duration(rb.count)
}

// GetStats calculates comprehensive latency statistics
func (rb *DurationRingBuffer) GetStats() LatencyStats {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.count == 0 {
		return LatencyStats{}
	}

	// Copy values to avoid holding the lock during sort
	values := make([]time.Duration, rb.count)
	for i := 0; i < rb.count; i++ {
		idx := (rb.head + i) % rb.size
		values[i] = rb.buffer[idx]
	}

	sort.Slice(values, func(i, j int) bool {
		return values[i] < values[j]
	})

	stats := LatencyStats{
		Count: uint64(rb.count),
		Min:   values[0],
		Max:   values[rb.count-1],
	}

	var total time.Duration
	for _, v := range values {
		total += v
	}
	stats.Mean = total / time.Duration(rb.count)

	stats.P50 = rb.percentile(values, 0.50)
	stats.P95 = rb.percentile(values, 0.95)
	stats.P99 = rb.percentile(values, 0.99)
	stats.P999 = rb.percentile(values, 0.999)

	return stats
}

// percentile calculates the nth percentile from sorted values
func (rb *DurationRingBuffer) percentile(values []time.Duration, p float64) time.Duration {
	if len(values) == 0 {
		return 0
	}

	index := int(float64(len(values)-1) * p)
	if index >= len(values) {
		index = len(values) - 1
	}
	return values[index]
}

// MetricsConfig provides configuration options for metrics collection
type MetricsConfig struct {
	BufferSize     int            `json:"buffer_size"`     // Size of event buffer
	LatencyBuffers map[string]int `json:"latency_buffers"` // Per-operation ring buffer sizes
}

// DefaultMetricsConfig returns a default configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		BufferSize: 10000,
		LatencyBuffers: map[string]int{
			"add":      1000,
			"remove":   1000,
			"contains": 1000,
			"len":      1000,
			"iterate":  100,
			"sweep":    100,
		},
	}
}

// Metrics tracks container performance using a buffered channel and ring buffers
type Metrics struct {
	// Configuration
	config MetricsConfig

	// Buffered channel for metric events
	eventChan chan MetricEvent

	// Background goroutine for processing events
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Internal counters (protected by mutex for batch updates)
	mu sync.RWMutex

	// Operation counts
	AddCount         uint64
	RemoveCount      uint64
	ContainsCount    uint64
	LenCount         uint64
	IterateCount     uint64
	ClearCount       uint64
	BatchAddCount    uint64
	BatchRemoveCount uint64

	// Sweep activity
	SweepScans   uint64
	SweepSkips   uint64
	SweptEntries uint64

	// Population gauge, set after each sweep decision
	LiveEntries uint64

	// Latency tracking (ring buffers for recent latencies)
	AddLatency      *DurationRingBuffer
	RemoveLatency   *DurationRingBuffer
	ContainsLatency *DurationRingBuffer
	LenLatency      *DurationRingBuffer
	IterateLatency  *DurationRingBuffer
	SweepLatency    *DurationRingBuffer
}

// NewMetrics creates a new metrics instance with default configuration
func NewMetrics() *Metrics {
	return NewMetricsWithConfig(DefaultMetricsConfig())
}

// NewBufferedMetrics creates a new metrics instance with configurable buffer size
func NewBufferedMetrics(bufferSize int) *Metrics {
	config := DefaultMetricsConfig()
	config.BufferSize = bufferSize
	return NewMetricsWithConfig(config)
}

// NewMetricsWithConfig creates a new metrics instance with custom configuration
func NewMetricsWithConfig(config MetricsConfig) *Metrics {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Metrics{
		config:          config,
		eventChan:       make(chan MetricEvent, config.BufferSize),
		ctx:             ctx,
		cancel:          cancel,
		AddLatency:      NewDurationRingBuffer(config.LatencyBuffers["add"]),
		RemoveLatency:   NewDurationRingBuffer(config.LatencyBuffers["remove"]),
		ContainsLatency: NewDurationRingBuffer(config.LatencyBuffers["contains"]),
		LenLatency:      NewDurationRingBuffer(config.LatencyBuffers["len"]),
		IterateLatency:  NewDurationRingBuffer(config.LatencyBuffers["iterate"]),
		SweepLatency:    NewDurationRingBuffer(config.LatencyBuffers["sweep"]),
	}

	// Start background processor
	m.wg.Add(1)
	go m.processEvents()

	return m
}

// processEvents runs in a background goroutine to process metric events
func (m *Metrics) processEvents() {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.eventChan:
			m.processEvent(event)
		case <-m.ctx.Done():
			return
		}
	}
}

// processEvent handles a single metric event
func (m *Metrics) processEvent(event MetricEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event.Op {
	case "add":
		m.AddCount++
		m.AddLatency.Push(event.Duration)
	case "remove":
		m.RemoveCount++
		m.RemoveLatency.Push(event.Duration)
	case "contains":
		m.ContainsCount++
		m.ContainsLatency.Push(event.Duration)
	case "len":
		m.LenCount++
		m.LenLatency.Push(event.Duration)
	case "iterate":
		m.IterateCount++
		m.IterateLatency.Push(event.Duration)
	case "clear":
		m.ClearCount++
	case "batch_add":
		m.BatchAddCount++
		m.AddLatency.Push(event.Duration)
	case "batch_remove":
		m.BatchRemoveCount++
		m.RemoveLatency.Push(event.Duration)
	case "sweep":
		m.SweepScans++
		m.SweptEntries += uint64(event.Swept)
		m.SweepLatency.Push(event.Duration)
	case "sweep_skip":
		m.SweepSkips++
	}
}

// send enqueues an event without ever blocking the caller.
func (m *Metrics) send(event MetricEvent) {
	select {
	case m.eventChan <- event:
	default:
		// Channel full, drop the event to avoid blocking
	}
}

// RecordAdd records an Add operation
func (m *Metrics) RecordAdd(duration time.Duration) {
	m.send(MetricEvent{Op: "add", Duration: duration, Timestamp: time.Now()})
}

// RecordRemove records a Remove operation
func (m *Metrics) RecordRemove(duration time.Duration) {
	m.send(MetricEvent{Op: "remove", Duration: duration, Timestamp: time.Now()})
}

// RecordContains records a Contains operation
func (m *Metrics) RecordContains(duration time.Duration) {
	m.send(MetricEvent{Op: "contains", Duration: duration, Timestamp: time.Now()})
}

// RecordLen records a Len operation
func (m *Metrics) RecordLen(duration time.Duration) {
	m.send(MetricEvent{Op: "len", Duration: duration, Timestamp: time.Now()})
}

// RecordIterate records the creation of an iterator
func (m *Metrics) RecordIterate(duration time.Duration) {
	m.send(MetricEvent{Op: "iterate", Duration: duration, Timestamp: time.Now()})
}

// RecordClear records a Clear operation
func (m *Metrics) RecordClear() {
	m.send(MetricEvent{Op: "clear", Timestamp: time.Now()})
}

// RecordBatchAdd records an AddAll operation and the number of items it appended
func (m *Metrics) RecordBatchAdd(duration time.Duration, batchSize int) {
	m.send(MetricEvent{Op: "batch_add", Duration: duration, Batch: batchSize, Timestamp: time.Now()})
}

// RecordBatchRemove records a RemoveAll operation and the number of items it was asked for
func (m *Metrics) RecordBatchRemove(duration time.Duration, batchSize int) {
	m.send(MetricEvent{Op: "batch_remove", Duration: duration, Batch: batchSize, Timestamp: time.Now()})
}

// RecordSweep records a full sweep scan and how many dead entries it unlinked
func (m *Metrics) RecordSweep(duration time.Duration, swept int) {
	m.send(MetricEvent{Op: "sweep", Duration: duration, Swept: swept, Timestamp: time.Now()})
}

// RecordSweepSkipped records a sweep decision resolved from the epoch cache
func (m *Metrics) RecordSweepSkipped() {
	m.send(MetricEvent{Op: "sweep_skip", Timestamp: time.Now()})
}

// SetLiveEntries sets the current live-entry gauge
func (m *Metrics) SetLiveEntries(count uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LiveEntries = count
}

// GetStats returns a snapshot of current metrics
func (m *Metrics) GetStats() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		Operations: OperationCounts{
			Add:         m.AddCount,
			Remove:      m.RemoveCount,
			Contains:    m.ContainsCount,
			Len:         m.LenCount,
			Iterate:     m.IterateCount,
			Clear:       m.ClearCount,
			BatchAdd:    m.BatchAddCount,
			BatchRemove: m.BatchRemoveCount,
		},
		Sweeps: SweepCounts{
			Scans:        m.SweepScans,
			Skipped:      m.SweepSkips,
			SweptEntries: m.SweptEntries,
		},
		LiveEntries: m.LiveEntries,
		Latency: LatencyMetrics{
			Add:      m.AddLatency.GetStats(),
			Remove:   m.RemoveLatency.GetStats(),
			Contains: m.ContainsLatency.GetStats(),
			Len:      m.LenLatency.GetStats(),
			Iterate:  m.IterateLatency.GetStats(),
			Sweep:    m.SweepLatency.GetStats(),
		},
		Configuration: m.config,
	}
}

// ExportJSON exports metrics as JSON
func (m *Metrics) ExportJSON() []byte {
	stats := m.GetStats()
	jsonData, _ := json.MarshalIndent(stats, "", "  ")
	return jsonData
}

// Close shuts down the metrics processor. The event channel stays open so a
// straggling Record call after Close cannot panic; its event is simply never
// drained.
func (m *Metrics) Close() {
	m.cancel()
	m.wg.Wait()
}
