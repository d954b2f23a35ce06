// Licensed under the MIT License. See LICENSE file in the project root for details.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationsDesc = prometheus.NewDesc(
		"weaklist_operations_total",
		"Total number of container operations by type.",
		[]string{"op"}, nil,
	)
	sweepsDesc = prometheus.NewDesc(
		"weaklist_sweeps_total",
		"Total number of sweep decisions by outcome: scan or skipped.",
		[]string{"mode"}, nil,
	)
	sweptEntriesDesc = prometheus.NewDesc(
		"weaklist_swept_entries_total",
		"Total number of dead entries unlinked by sweeps.",
		nil, nil,
	)
	liveEntriesDesc = prometheus.NewDesc(
		"weaklist_live_entries",
		"Live entries observed by the most recent sweep decision.",
		nil, nil,
	)
	latencyDesc = prometheus.NewDesc(
		"weaklist_operation_latency_seconds",
		"Mean operation latency over the recent sample window.",
		[]string{"op"}, nil,
	)
)

// Bridge exposes a Metrics instance to a Prometheus registry. Values are
// pulled from GetStats at scrape time, so the bridge holds no state of its
// own.
type Bridge struct {
	m *Metrics
}

// NewBridge creates a bridge for m.
func NewBridge(m *Metrics) *Bridge {
	return &Bridge{m: m}
}

// Describe implements prometheus.Collector.
func (b *Bridge) Describe(ch chan<- *prometheus.Desc) {
	ch <- operationsDesc
	ch <- sweepsDesc
	ch <- sweptEntriesDesc
	ch <- liveEntriesDesc
	ch <- latencyDesc
}

// Collect implements prometheus.Collector.
func (b *Bridge) Collect(ch chan<- prometheus.Metric) {
	stats := b.m.GetStats()

	ops := []struct {
		label string
		count uint64
		mean  float64
	}{
		{"add", stats.Operations.Add, stats.Latency.Add.Mean.Seconds()},
		{"remove", stats.Operations.Remove, stats.Latency.Remove.Mean.Seconds()},
		{"contains", stats.Operations.Contains, stats.Latency.Contains.Mean.Seconds()},
		{"len", stats.Operations.Len, stats.Latency.Len.Mean.Seconds()},
		{"iterate", stats.Operations.Iterate, stats.Latency.Iterate.Mean.Seconds()},
		{"clear", stats.Operations.Clear, 0},
		{"batch_add", stats.Operations.BatchAdd, 0},
		{"batch_remove", stats.Operations.BatchRemove, 0},
		{"sweep", stats.Sweeps.Scans, stats.Latency.Sweep.Mean.Seconds()},
	}
	for _, op := range ops {
		ch <- prometheus.MustNewConstMetric(operationsDesc, prometheus.CounterValue, float64(op.count), op.label)
		ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, op.mean, op.label)
	}

	ch <- prometheus.MustNewConstMetric(sweepsDesc, prometheus.CounterValue, float64(stats.Sweeps.Scans), "scan")
	ch <- prometheus.MustNewConstMetric(sweepsDesc, prometheus.CounterValue, float64(stats.Sweeps.Skipped), "skipped")
	ch <- prometheus.MustNewConstMetric(sweptEntriesDesc, prometheus.CounterValue, float64(stats.Sweeps.SweptEntries))
	ch <- prometheus.MustNewConstMetric(liveEntriesDesc, prometheus.GaugeValue, float64(stats.LiveEntries))
}

// RegisterPrometheus registers a bridge for m with the given registry.
func RegisterPrometheus(reg prometheus.Registerer, m *Metrics) error {
	return reg.Register(NewBridge(m))
}
