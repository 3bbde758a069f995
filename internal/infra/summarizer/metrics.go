package summarizer

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SummaryMetricsRecorder records summary-related metrics for one provider.
// Tests inject a recorder that keeps the observed values in memory.
type SummaryMetricsRecorder interface {
	// RecordLength records the length of a generated summary in words.
	RecordLength(words int)

	// RecordLimitExceeded counts a summary longer than the configured maximum.
	RecordLimitExceeded()

	// RecordCompliance records whether the latest summary was within the maximum.
	RecordCompliance(withinLimit bool)

	// RecordDuration records the time taken to generate a summary.
	RecordDuration(duration time.Duration)
}

// summaryCollectors are shared by every provider and labeled by provider name.
type summaryCollectors struct {
	length     *prometheus.HistogramVec
	exceeded   *prometheus.CounterVec
	compliance *prometheus.GaugeVec
	duration   *prometheus.HistogramVec
}

var (
	collectors     *summaryCollectors
	collectorsOnce sync.Once
)

func defaultCollectors() *summaryCollectors {
	collectorsOnce.Do(func() {
		collectors = &summaryCollectors{
			length: getOrRegister(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "chunk_summary_length_words",
				Help:    "Distribution of chunk summary lengths in words",
				Buckets: []float64{10, 20, 30, 45, 60, 80, 100, 120, 160, 240},
			}, []string{"provider"})),
			exceeded: getOrRegister(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "chunk_summary_limit_exceeded_total",
				Help: "Total number of chunk summaries longer than the configured word limit",
			}, []string{"provider"})),
			compliance: getOrRegister(prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "chunk_summary_limit_compliance",
				Help: "1 when the latest chunk summary was within the word limit, 0 otherwise",
			}, []string{"provider"})),
			duration: getOrRegister(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "chunk_summarization_duration_seconds",
				Help:    "Time taken to summarize one chunk",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider"})),
		}
	})
	return collectors
}

// getOrRegister registers c with the default registerer, returning the
// already registered collector on conflict.
func getOrRegister[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder for one provider.
type PrometheusSummaryMetrics struct {
	lengthHistogram   prometheus.Observer
	exceededCounter   prometheus.Counter
	complianceGauge   prometheus.Gauge
	durationHistogram prometheus.Observer
}

// NewPrometheusSummaryMetrics returns a recorder labeled with provider.
func NewPrometheusSummaryMetrics(provider string) *PrometheusSummaryMetrics {
	c := defaultCollectors()
	return &PrometheusSummaryMetrics{
		lengthHistogram:   c.length.WithLabelValues(provider),
		exceededCounter:   c.exceeded.WithLabelValues(provider),
		complianceGauge:   c.compliance.WithLabelValues(provider),
		durationHistogram: c.duration.WithLabelValues(provider),
	}
}

// RecordLength implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordLength(words int) {
	p.lengthHistogram.Observe(float64(words))
}

// RecordLimitExceeded implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordLimitExceeded() {
	p.exceededCounter.Inc()
}

// RecordCompliance implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordCompliance(withinLimit bool) {
	if withinLimit {
		p.complianceGauge.Set(1)
	} else {
		p.complianceGauge.Set(0)
	}
}

// RecordDuration implements SummaryMetricsRecorder.
func (p *PrometheusSummaryMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}
