package digest

import (
	"fmt"
	"time"
)

// Progress is reported after each chunk is summarized. Remaining is a linear
// extrapolation of the elapsed wall-clock time.
type Progress struct {
	Completed int
	Total     int
	Percent   float64
	Elapsed   time.Duration
	Remaining time.Duration
}

func newProgress(completed, total int, elapsed time.Duration) Progress {
	p := Progress{Completed: completed, Total: total, Elapsed: elapsed}
	if total <= 0 || completed <= 0 {
		return p
	}
	fraction := float64(completed) / float64(total)
	p.Percent = fraction * 100
	estimatedTotal := time.Duration(float64(elapsed) / fraction)
	if remaining := estimatedTotal - elapsed; remaining > 0 {
		p.Remaining = remaining
	}
	return p
}

// String renders the progress line shown to users.
func (p Progress) String() string {
	return fmt.Sprintf("Progress: %.2f%% - Estimated time remaining: %.2f seconds",
		p.Percent, p.Remaining.Seconds())
}

// ProgressReporter receives progress updates between summarization calls.
type ProgressReporter interface {
	ChunkSummarized(p Progress)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(p Progress)

// ChunkSummarized calls f(p).
func (f ProgressFunc) ChunkSummarized(p Progress) {
	f(p)
}
