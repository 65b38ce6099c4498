// Package stats tracks per-session analysis statistics in memory.
// Nothing is written to disk; a new session starts from zero.
package stats

import (
	"sync"

	"github.com/qinggan/qinggan/internal/render"
	"github.com/qinggan/qinggan/internal/types"
)

// Snapshot is a point-in-time copy of the session counters.
type Snapshot struct {
	TotalAnalyzed int
	Positive      int
	Negative      int
	Neutral       int
	AverageScore  float64
	EmotionCounts map[string]int // emotion key -> times it appeared in details
}

// Tracker accumulates counters across submissions. Safe for concurrent
// use; the TUI and CLI both record through the orchestrator.
type Tracker struct {
	mu            sync.Mutex
	total         int
	positive      int
	negative      int
	neutral       int
	scoreSum      float64
	emotionCounts map[string]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{emotionCounts: make(map[string]int)}
}

// Record adds one analyzed result to the session counters.
func (t *Tracker) Record(result types.AnalysisResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.scoreSum += result.Score

	switch render.ClassifySentiment(result.Sentiment) {
	case render.ClassPositive:
		t.positive++
	case render.ClassNegative:
		t.negative++
	default:
		t.neutral++
	}

	for _, e := range result.Details {
		t.emotionCounts[e.Key]++
	}
}

// RecordBatch records every result of a batch response.
func (t *Tracker) RecordBatch(results []types.AnalysisResult) {
	for _, result := range results {
		t.Record(result)
	}
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		TotalAnalyzed: t.total,
		Positive:      t.positive,
		Negative:      t.negative,
		Neutral:       t.neutral,
		EmotionCounts: make(map[string]int, len(t.emotionCounts)),
	}
	if t.total > 0 {
		s.AverageScore = t.scoreSum / float64(t.total)
	}
	for key, count := range t.emotionCounts {
		s.EmotionCounts[key] = count
	}
	return s
}
