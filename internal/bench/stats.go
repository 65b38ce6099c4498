package bench

import "sort"

// Stats accumulates per-request outcomes of a benchmark run.
type Stats struct {
	TotalRequests     int
	CompletedRequests int
	SuccessCount      int
	TransportErrors   int // connection failures, timeouts
	BackendErrors     int // non-2xx responses from the backend

	Durations       []int64 // milliseconds, for percentile calculation
	TotalDurationMs int64
	MinDurationMs   int64
	MaxDurationMs   int64
}

// NewStats creates an empty Stats for total planned requests.
func NewStats(total int) *Stats {
	return &Stats{
		TotalRequests: total,
		Durations:     make([]int64, 0, total),
		MinDurationMs: -1,
		MaxDurationMs: -1,
	}
}

// Outcome classifies one finished request.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransportError
	OutcomeBackendError
)

// AddResult records one finished request.
func (s *Stats) AddResult(durationMs int64, outcome Outcome) {
	s.CompletedRequests++
	s.TotalDurationMs += durationMs
	s.Durations = append(s.Durations, durationMs)

	switch outcome {
	case OutcomeTransportError:
		s.TransportErrors++
	case OutcomeBackendError:
		s.BackendErrors++
	default:
		s.SuccessCount++
	}

	if s.MinDurationMs == -1 || durationMs < s.MinDurationMs {
		s.MinDurationMs = durationMs
	}
	if s.MaxDurationMs == -1 || durationMs > s.MaxDurationMs {
		s.MaxDurationMs = durationMs
	}
}

// AvgDurationMs returns the mean request duration.
func (s *Stats) AvgDurationMs() float64 {
	if s.CompletedRequests == 0 {
		return 0
	}
	return float64(s.TotalDurationMs) / float64(s.CompletedRequests)
}

// Min returns the fastest request, or 0 before any result.
func (s *Stats) Min() int64 {
	if s.MinDurationMs == -1 {
		return 0
	}
	return s.MinDurationMs
}

// Max returns the slowest request, or 0 before any result.
func (s *Stats) Max() int64 {
	if s.MaxDurationMs == -1 {
		return 0
	}
	return s.MaxDurationMs
}

// Percentile interpolates the p-th percentile duration (0-100).
func (s *Stats) Percentile(p float64) int64 {
	if len(s.Durations) == 0 {
		return 0
	}

	sorted := make([]int64, len(s.Durations))
	copy(sorted, s.Durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return int64(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}

// P50 returns the median duration.
func (s *Stats) P50() int64 { return s.Percentile(50) }

// P95 returns the 95th percentile duration.
func (s *Stats) P95() int64 { return s.Percentile(95) }

// P99 returns the 99th percentile duration.
func (s *Stats) P99() int64 { return s.Percentile(99) }

// SuccessRate returns the fraction of successful requests as a
// percentage.
func (s *Stats) SuccessRate() float64 {
	if s.CompletedRequests == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.CompletedRequests) * 100
}
