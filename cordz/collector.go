package cordz

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kolkov/cordz/internal/cordz/info"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/sampler"
)

// ErrInvalidCollectorConfig is returned when the collector
// configuration is invalid.
var ErrInvalidCollectorConfig = errors.New("invalid cordz collector configuration")

// CollectorConfig configures the Prometheus collector.
//
// Thread Safety: immutable after creation; safe for concurrent reads.
type CollectorConfig struct {
	// Namespace is the metrics namespace. Required.
	Namespace string

	// Subsystem is the metrics subsystem. Required.
	Subsystem string
}

// DefaultCollectorConfig returns a configuration with sensible
// defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Namespace: "cordz",
		Subsystem: "registry",
	}
}

// Validate checks that the configuration is valid.
func (c CollectorConfig) Validate() error {
	if c.Namespace == "" {
		return errors.Join(ErrInvalidCollectorConfig, errors.New("namespace is required"))
	}
	if c.Subsystem == "" {
		return errors.Join(ErrInvalidCollectorConfig, errors.New("subsystem is required"))
	}
	return nil
}

// Collector exports registry state as Prometheus metrics.
//
// Every scrape takes one snapshot and walks the live records, so
// values are observed at scrape time rather than maintained on the
// tracking hot path. Implements prometheus.Collector.
type Collector struct {
	trackedCords      *prometheus.Desc
	trackedBytes      *prometheus.Desc
	cordsByMethod     *prometheus.Desc
	updatesByMethod   *prometheus.Desc
	samplingDecisions *prometheus.Desc
	samplingSampled   *prometheus.Desc
}

// NewCollector returns a collector for the process-wide registry.
// Register it with a prometheus.Registerer:
//
//	c, err := cordz.NewCollector(cordz.DefaultCollectorConfig())
//	if err != nil { ... }
//	prometheus.MustRegister(c)
func NewCollector(cfg CollectorConfig) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fqName := func(name string) string {
		return prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, name)
	}
	return &Collector{
		trackedCords: prometheus.NewDesc(
			fqName("tracked_cords"),
			"Number of currently tracked cords.",
			nil, nil),
		trackedBytes: prometheus.NewDesc(
			fqName("tracked_bytes"),
			"Total size in bytes of currently tracked cords.",
			nil, nil),
		cordsByMethod: prometheus.NewDesc(
			fqName("tracked_cords_by_method"),
			"Number of currently tracked cords by creating method.",
			[]string{"method"}, nil),
		updatesByMethod: prometheus.NewDesc(
			fqName("updates_by_method"),
			"Update counts aggregated over currently tracked cords, by method.",
			[]string{"method"}, nil),
		samplingDecisions: prometheus.NewDesc(
			fqName("sampling_decisions_total"),
			"Profiling candidates seen while sampling was enabled.",
			nil, nil),
		samplingSampled: prometheus.NewDesc(
			fqName("sampling_sampled_total"),
			"Profiling candidates selected for tracking.",
			nil, nil),
	}, nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.trackedCords
	ch <- c.trackedBytes
	ch <- c.cordsByMethod
	ch <- c.updatesByMethod
	ch <- c.samplingDecisions
	ch <- c.samplingSampled
}

// Collect implements prometheus.Collector. It walks the registry under
// a single snapshot; mutator goroutines are never blocked by a scrape.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := info.NewSnapshot()
	defer s.Close()

	var (
		records    float64
		totalBytes float64
		byMethod   [method.NumMethods]float64
		updates    [method.NumMethods]float64
	)
	for ci := info.Head(s); ci != nil; ci = ci.Next(s) {
		stats := ci.GetCordzStatistics()
		records++
		totalBytes += float64(stats.Size)
		byMethod[stats.Method]++
		for _, m := range method.All() {
			updates[m] += float64(stats.UpdateTracker.Value(m))
		}
	}

	ch <- prometheus.MustNewConstMetric(c.trackedCords, prometheus.GaugeValue, records)
	ch <- prometheus.MustNewConstMetric(c.trackedBytes, prometheus.GaugeValue, totalBytes)
	for _, m := range method.All() {
		if byMethod[m] > 0 {
			ch <- prometheus.MustNewConstMetric(
				c.cordsByMethod, prometheus.GaugeValue, byMethod[m], m.String())
		}
		if updates[m] > 0 {
			ch <- prometheus.MustNewConstMetric(
				c.updatesByMethod, prometheus.GaugeValue, updates[m], m.String())
		}
	}

	sstats := sampler.Global().GetStats()
	ch <- prometheus.MustNewConstMetric(
		c.samplingDecisions, prometheus.CounterValue, float64(sstats.Decisions))
	ch <- prometheus.MustNewConstMetric(
		c.samplingSampled, prometheus.CounterValue, float64(sstats.Sampled))
}
