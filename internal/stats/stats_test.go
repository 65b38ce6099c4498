package stats

import (
	"math"
	"testing"

	"github.com/qinggan/qinggan/internal/types"
)

func TestTracker_Record(t *testing.T) {
	tracker := NewTracker()

	tracker.Record(types.AnalysisResult{Sentiment: "积极", Score: 0.9,
		Details: types.Details{{Key: "happy", Value: 0.8}, {Key: "love", Value: 0.2}}})
	tracker.Record(types.AnalysisResult{Sentiment: "消极", Score: 0.1,
		Details: types.Details{{Key: "sad", Value: 0.7}}})
	tracker.Record(types.AnalysisResult{Sentiment: "中性", Score: 0.5})

	s := tracker.Snapshot()
	if s.TotalAnalyzed != 3 {
		t.Errorf("total = %d, want 3", s.TotalAnalyzed)
	}
	if s.Positive != 1 || s.Negative != 1 || s.Neutral != 1 {
		t.Errorf("distribution = %d/%d/%d", s.Positive, s.Negative, s.Neutral)
	}
	if math.Abs(s.AverageScore-0.5) > 1e-9 {
		t.Errorf("average = %v, want 0.5", s.AverageScore)
	}
	if s.EmotionCounts["happy"] != 1 || s.EmotionCounts["sad"] != 1 {
		t.Errorf("emotion counts = %v", s.EmotionCounts)
	}
}

func TestTracker_UnknownSentimentCountsNeutral(t *testing.T) {
	tracker := NewTracker()
	tracker.Record(types.AnalysisResult{Sentiment: "whatever", Score: 0.5})

	if s := tracker.Snapshot(); s.Neutral != 1 {
		t.Errorf("neutral = %d, want 1", s.Neutral)
	}
}

func TestTracker_EmptySnapshot(t *testing.T) {
	s := NewTracker().Snapshot()
	if s.TotalAnalyzed != 0 || s.AverageScore != 0 {
		t.Errorf("empty snapshot = %+v", s)
	}
}

func TestTracker_RecordBatch(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordBatch([]types.AnalysisResult{
		{Sentiment: "积极", Score: 1},
		{Sentiment: "积极", Score: 0},
	})

	s := tracker.Snapshot()
	if s.TotalAnalyzed != 2 || s.Positive != 2 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	tracker := NewTracker()
	tracker.Record(types.AnalysisResult{Sentiment: "积极", Score: 1,
		Details: types.Details{{Key: "happy", Value: 0.5}}})

	s := tracker.Snapshot()
	s.EmotionCounts["happy"] = 99

	if tracker.Snapshot().EmotionCounts["happy"] != 1 {
		t.Error("snapshot shares state with the tracker")
	}
}
