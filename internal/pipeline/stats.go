package pipeline

import (
	"sort"
	"sync"
	"time"
)

// Phases tracked by AnalysisStats. Total is the whole pipeline run.
const (
	PhaseNormalize = "normalize"
	PhaseExtract   = "extract"
	PhaseCompare   = "compare"
	PhaseValidate  = "validate"
	PhaseTotal     = "total"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// PhaseStats is a point-in-time aggregate of one phase's duration samples.
type PhaseStats struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// AnalysisStats tracks recent analysis durations per pipeline phase within a
// rolling window, so slow filings can be attributed to flattening vs
// extraction vs diffing.
type AnalysisStats struct {
	mu      sync.Mutex
	samples map[string][]sample
	maxAge  time.Duration
}

func NewAnalysisStats(maxAge time.Duration) *AnalysisStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &AnalysisStats{
		samples: make(map[string][]sample),
		maxAge:  maxAge,
	}
}

func (s *AnalysisStats) Record(phase string, durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples[phase] = append(s.samples[phase], sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

// Snapshot aggregates the current window per phase. Phases with no samples
// in the window are absent.
func (s *AnalysisStats) Snapshot() map[string]PhaseStats {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	out := make(map[string]PhaseStats, len(s.samples))
	for phase, samples := range s.samples {
		values := make([]int64, 0, len(samples))
		var sum int64
		for _, sm := range samples {
			values = append(values, sm.durationMs)
			sum += sm.durationMs
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

		out[phase] = PhaseStats{
			Count: len(values),
			MinMs: values[0],
			MaxMs: values[len(values)-1],
			AvgMs: float64(sum) / float64(len(values)),
			P50Ms: percentile(values, 50),
			P95Ms: percentile(values, 95),
			P99Ms: percentile(values, 99),
		}
	}
	return out
}

func (s *AnalysisStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	for phase, samples := range s.samples {
		writeIdx := 0
		for _, sm := range samples {
			if !sm.timestamp.Before(cutoff) {
				samples[writeIdx] = sm
				writeIdx++
			}
		}
		if writeIdx == 0 {
			delete(s.samples, phase)
			continue
		}
		s.samples[phase] = samples[:writeIdx]
	}
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
