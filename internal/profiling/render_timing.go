package profiling

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// RenderSummary describes how long card rendering took during one load.
// Durations are in milliseconds.
type RenderSummary struct {
	Cards  int     `json:"cards"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// RenderTimer collects per-card render durations from concurrent workers
type RenderTimer struct {
	mu      sync.Mutex
	samples []float64
}

// NewRenderTimer creates a timer sized for n cards
func NewRenderTimer(n int) *RenderTimer {
	return &RenderTimer{samples: make([]float64, 0, n)}
}

// Observe records one card's render duration
func (t *RenderTimer) Observe(d time.Duration) {
	t.mu.Lock()
	t.samples = append(t.samples, float64(d)/float64(time.Millisecond))
	t.mu.Unlock()
}

// Time runs fn and records how long it took
func (t *RenderTimer) Time(fn func()) {
	start := time.Now()
	fn()
	t.Observe(time.Since(start))
}

// Summary computes the distribution of recorded durations. An empty timer
// yields a zero summary.
func (t *RenderTimer) Summary() (RenderSummary, error) {
	t.mu.Lock()
	data := make([]float64, len(t.samples))
	copy(data, t.samples)
	t.mu.Unlock()

	if len(data) == 0 {
		return RenderSummary{}, nil
	}
	return Summarize(data)
}

// Summarize computes mean, median, 95th percentile and maximum of ms samples
func Summarize(data []float64) (RenderSummary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return RenderSummary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return RenderSummary{}, err
	}
	p95, err := stats.Percentile(data, 95)
	if err != nil {
		return RenderSummary{}, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return RenderSummary{}, err
	}

	return RenderSummary{
		Cards:  len(data),
		MeanMs: round2(mean),
		P50Ms:  round2(median),
		P95Ms:  round2(p95),
		MaxMs:  round2(max),
	}, nil
}

func round2(v float64) float64 {
	r, _ := stats.Round(v, 2)
	return r
}
