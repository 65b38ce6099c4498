package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qinggan/qinggan/internal/render"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorGray  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleLoading = lipgloss.NewStyle().
			Foreground(colorGreen)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	title := styleTitle.Render("中文情感分析")

	var body string
	switch {
	case m.mode == ModeStats:
		body = m.renderStats()
	case m.loading:
		body = styleLoading.Render(fmt.Sprintf("%s 分析中...", m.spin.View()))
	case m.ready:
		body = m.results.View()
	}

	resultBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(m.width - 2).
		Render(body)

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGreen).
		Width(m.width - 2).
		Render(m.input.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		inputBox,
		resultBox,
		m.renderStatusBar(),
	)
}

func (m Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return styleError.Render("错误: " + m.errorMsg)
	}
	return styleSubtle.Render(m.statusMsg)
}

// renderStats shows the in-memory session counters.
func (m Model) renderStats() string {
	s := m.tracker.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "已分析: %d\n", s.TotalAnalyzed)
	fmt.Fprintf(&b, "积极: %d  消极: %d  中性: %d\n", s.Positive, s.Negative, s.Neutral)
	if s.TotalAnalyzed > 0 {
		fmt.Fprintf(&b, "平均得分: %.2f\n", s.AverageScore)
	}

	if len(s.EmotionCounts) > 0 {
		keys := make([]string, 0, len(s.EmotionCounts))
		for key := range s.EmotionCounts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteString("情绪出现次数:\n")
		for _, key := range keys {
			fmt.Fprintf(&b, "  %s: %d\n", render.EmotionLabel(key), s.EmotionCounts[key])
		}
	}

	return b.String()
}
