package summarizer

import (
	"sync"
	"time"

	"article-digest/internal/resilience/retry"
)

// MockMetricsRecorder keeps recorded values in memory.
type MockMetricsRecorder struct {
	mu                 sync.Mutex
	RecordedLengths    []int
	ExceededCount      int
	RecordedCompliance []bool
	RecordedDurations  []time.Duration
}

func (m *MockMetricsRecorder) RecordLength(words int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordedLengths = append(m.RecordedLengths, words)
}

func (m *MockMetricsRecorder) RecordLimitExceeded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExceededCount++
}

func (m *MockMetricsRecorder) RecordCompliance(withinLimit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordedCompliance = append(m.RecordedCompliance, withinLimit)
}

func (m *MockMetricsRecorder) RecordDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordedDurations = append(m.RecordedDurations, d)
}

// fastRetry keeps retry tests quick.
func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

var testLimits = Limits{MinWords: 2, MaxWords: 5}
