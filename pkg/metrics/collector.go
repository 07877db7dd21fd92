package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector groups the Prometheus instruments emitted by the summarization pipeline.
// A nil Collector is valid and records nothing.
type Collector struct {
	inferenceTotal    *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	summariesTotal    *prometheus.CounterVec
	chunksProcessed   prometheus.Histogram
	cacheLookups      *prometheus.CounterVec
	modelSwitches     *prometheus.CounterVec
}

// NewCollector registers the pipeline instruments with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		inferenceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "summarizer",
				Subsystem: "inference",
				Name:      "calls_total",
				Help:      "Total number of chunk inference calls",
			},
			[]string{"model", "status"},
		),
		inferenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "summarizer",
				Subsystem: "inference",
				Name:      "duration_seconds",
				Help:      "Chunk inference duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"model"},
		),
		summariesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "summarizer",
				Subsystem: "pipeline",
				Name:      "summaries_total",
				Help:      "Total number of summarize requests by outcome code",
			},
			[]string{"code"},
		),
		chunksProcessed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "summarizer",
				Subsystem: "pipeline",
				Name:      "chunks_processed",
				Help:      "Number of leaf chunks per summarize request",
				Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "summarizer",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Chunk cache lookups by result",
			},
			[]string{"result"},
		),
		modelSwitches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "summarizer",
				Subsystem: "registry",
				Name:      "switches_total",
				Help:      "Model switch attempts by outcome",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			c.inferenceTotal,
			c.inferenceDuration,
			c.summariesTotal,
			c.chunksProcessed,
			c.cacheLookups,
			c.modelSwitches,
		)
	}
	return c
}

// ObserveInference records one backend call.
func (c *Collector) ObserveInference(model, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.inferenceTotal.WithLabelValues(model, status).Inc()
	c.inferenceDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ObserveSummary records the outcome of a summarize request. code is "ok" on success.
func (c *Collector) ObserveSummary(code string, chunks int) {
	if c == nil {
		return
	}
	c.summariesTotal.WithLabelValues(code).Inc()
	if chunks > 0 {
		c.chunksProcessed.Observe(float64(chunks))
	}
}

// ObserveCache records a chunk cache hit or miss.
func (c *Collector) ObserveCache(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveSwitch records a model switch attempt.
func (c *Collector) ObserveSwitch(status string) {
	if c == nil {
		return
	}
	c.modelSwitches.WithLabelValues(status).Inc()
}
