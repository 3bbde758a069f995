package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "digest"

// Pipeline records per-stage latency, run outcomes and digest shape.
type Pipeline struct {
	stageDuration    *prometheus.HistogramVec
	stageFailures    *prometheus.CounterVec
	runs             *prometheus.CounterVec
	chunks           prometheus.Histogram
	compressionRatio prometheus.Histogram
	labels           *prometheus.CounterVec
}

// NewPipeline creates the pipeline collectors and registers them on reg.
// Collectors already registered on reg (for example by a second server in the
// same process) are reused.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	return &Pipeline{
		stageDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent in each pipeline stage",
				// Summarization of a long article can take minutes
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"stage"},
		)),
		stageFailures: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Total number of failed pipeline stages",
			},
			[]string{"stage"},
		)),
		runs: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		)),
		chunks: register(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chunks",
				Help:      "Number of chunks per article",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
		)),
		compressionRatio: register(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compression_ratio_percent",
				Help:      "Summary length as a percentage of article length",
				Buckets:   []float64{5, 10, 20, 30, 40, 60, 80, 100},
			},
		)),
		labels: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compression_labels_total",
				Help:      "Total number of digests by compression label",
			},
			[]string{"label"},
		)),
	}
}

// ObserveStage records the duration of one pipeline stage.
func (p *Pipeline) ObserveStage(stage string, seconds float64, failed bool) {
	p.stageDuration.WithLabelValues(stage).Observe(seconds)
	if failed {
		p.stageFailures.WithLabelValues(stage).Inc()
	}
}

// ObserveDigest records the shape of a completed digest.
func (p *Pipeline) ObserveDigest(chunks int, ratio float64, label string) {
	p.chunks.Observe(float64(chunks))
	p.compressionRatio.Observe(ratio)
	p.labels.WithLabelValues(label).Inc()
}

// RecordRun counts a finished run. outcome is "success" or "error_<stage>".
func (p *Pipeline) RecordRun(outcome string) {
	p.runs.WithLabelValues(outcome).Inc()
}

// register registers c on reg, returning the existing collector when an
// identical one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
