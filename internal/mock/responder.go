package mock

import (
	"strings"

	"github.com/qinggan/qinggan/internal/types"
)

// Canned cue words. This is a test double, not an analyzer: just
// enough signal that demo inputs produce varied, deterministic output.
var (
	positiveCues = []string{"开心", "高兴", "喜欢", "很好", "棒", "满意", "感谢"}
	negativeCues = []string{"难过", "生气", "讨厌", "太差", "糟糕", "失望", "愤怒"}
)

// Respond produces a deterministic canned result for text.
func Respond(text string) types.AnalysisResult {
	positive := countCues(text, positiveCues)
	negative := countCues(text, negativeCues)

	result := types.AnalysisResult{Text: text}
	switch {
	case positive > negative:
		result.Sentiment = "积极"
		result.Score = clamp(0.6 + 0.1*float64(positive))
		result.Details = types.Details{
			{Key: "happy", Value: clamp(0.5 + 0.1*float64(positive))},
			{Key: "love", Value: 0.3},
		}
	case negative > positive:
		result.Sentiment = "消极"
		result.Score = 1 - clamp(0.6+0.1*float64(negative))
		result.Details = types.Details{
			{Key: "sad", Value: clamp(0.5 + 0.1*float64(negative))},
			{Key: "bad", Value: 0.3},
		}
	default:
		result.Sentiment = "中性"
		result.Score = 0.5
	}

	switch {
	case positive+negative >= 2:
		result.Intensity = "strong"
	case positive+negative == 1:
		result.Intensity = "moderate"
	default:
		result.Intensity = "mild"
	}

	return result
}

func countCues(text string, cues []string) int {
	count := 0
	for _, cue := range cues {
		count += strings.Count(text, cue)
	}
	return count
}

func clamp(v float64) float64 {
	if v > 0.99 {
		return 0.99
	}
	return v
}
