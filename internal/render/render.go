package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qinggan/qinggan/internal/types"
)

// Class is the display classification of a sentiment value.
type Class int

const (
	ClassNeutral Class = iota
	ClassPositive
	ClassNegative
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorGray  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	stylePositive = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleNegative = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleNeutral  = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	styleField    = lipgloss.NewStyle().Foreground(colorCyan)
	styleSubtle   = lipgloss.NewStyle().Foreground(colorGray)
)

// emotionLabels maps the backend's emotion keys to display labels.
var emotionLabels = map[string]string{
	"love":     "喜爱",
	"happy":    "快乐",
	"sad":      "悲伤",
	"anger":    "愤怒",
	"fear":     "恐惧",
	"surprise": "惊讶",
	"good":     "称赞",
	"bad":      "厌恶",
}

// ClassifySentiment maps a sentiment value to its display class. The
// backend labels polarity in Chinese; English labels are accepted too.
// Anything unrecognized degrades to neutral. Total, never fails.
func ClassifySentiment(sentiment string) Class {
	switch strings.TrimSpace(sentiment) {
	case "积极", "positive":
		return ClassPositive
	case "消极", "negative":
		return ClassNegative
	default:
		return ClassNeutral
	}
}

// EmotionLabel returns the localized label for an emotion key. Unknown
// keys are returned unchanged. Total, never fails.
func EmotionLabel(key string) string {
	if label, ok := emotionLabels[key]; ok {
		return label
	}
	return key
}

// sentimentStyle returns the lipgloss style for a classification.
func sentimentStyle(class Class) lipgloss.Style {
	switch class {
	case ClassPositive:
		return stylePositive
	case ClassNegative:
		return styleNegative
	default:
		return styleNeutral
	}
}

// Sentiment renders a sentiment value styled by its classification.
func Sentiment(sentiment string) string {
	return sentimentStyle(ClassifySentiment(sentiment)).Render(sentiment)
}

// Single renders one analysis result as a text block: styled
// sentiment, two-decimal score, intensity verbatim, then one line per
// detail entry in the order the backend sent them.
func Single(result types.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", styleField.Render("情感:"), Sentiment(result.Sentiment))
	fmt.Fprintf(&b, "%s %.2f\n", styleField.Render("得分:"), result.Score)
	fmt.Fprintf(&b, "%s %s\n", styleField.Render("强度:"), result.Intensity)

	if block := detailBlock(result.Details); block != "" {
		b.WriteString(block)
	}

	return b.String()
}

// Batch renders an ordered list of results as indexed cards. Each card
// echoes the submitted text; indexes are 1-based.
func Batch(results []types.AnalysisResult) string {
	var b strings.Builder

	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", styleSubtle.Render(fmt.Sprintf("#%d", i+1)), result.Text)
		fmt.Fprintf(&b, "%s %s  %s %.2f  %s %s\n",
			styleField.Render("情感:"), Sentiment(result.Sentiment),
			styleField.Render("得分:"), result.Score,
			styleField.Render("强度:"), result.Intensity)
		if block := detailBlock(result.Details); block != "" {
			b.WriteString(block)
		}
	}

	return b.String()
}

// detailBlock renders the per-emotion lines, or "" when there are no
// details so the block is omitted entirely.
func detailBlock(details types.Details) string {
	if len(details) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleField.Render("情绪分布:"))
	b.WriteString("\n")
	for _, e := range details {
		fmt.Fprintf(&b, "  %s: %.2f\n", EmotionLabel(e.Key), e.Value)
	}
	return b.String()
}
