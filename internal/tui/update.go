package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/keybinds"
	"github.com/qinggan/qinggan/internal/render"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case singleResultMsg:
		m.loading = false
		m.errorMsg = ""
		m.resultJSON = msg.raw
		m.setResults(render.Single(msg.result))
		m.statusMsg = m.statusHint()
		return m, nil

	case batchResultMsg:
		m.loading = false
		m.errorMsg = ""
		m.resultJSON = msg.raw
		m.setResults(render.Batch(msg.results))
		m.statusMsg = m.statusHint()
		return m, nil

	case submitErrMsg:
		m.loading = false
		m.errorMsg = api.UserMessage(msg.err)
		m.statusMsg = m.statusHint()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Lookup(msg.String()) {
	case keybinds.ActionQuit:
		return m, tea.Quit

	case keybinds.ActionToggleMode:
		if m.mode == ModeStats {
			break
		}
		m.toggleMode()
		return m, nil

	case keybinds.ActionToggleStats:
		if m.mode == ModeStats {
			m.mode = ModeSingle
			m.input.Focus()
		} else {
			m.mode = ModeStats
			m.input.Blur()
		}
		m.statusMsg = m.statusHint()
		return m, nil

	case keybinds.ActionCopyResult:
		return m.copyResult()

	case keybinds.ActionSubmit:
		if m.mode == ModeSingle {
			return m.dispatch(false)
		}
		// batch mode: the key falls through to the textarea (newline)

	case keybinds.ActionSubmitBatch:
		if m.mode == ModeBatch {
			return m.dispatch(true)
		}
	}

	if m.mode == ModeStats {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// dispatch starts a submission unless one is already running.
func (m Model) dispatch(batch bool) (tea.Model, tea.Cmd) {
	if m.loading {
		m.errorMsg = "分析尚未完成，请稍候"
		return m, nil
	}

	raw := m.input.Value()
	m.loading = true
	m.errorMsg = ""
	m.statusMsg = "分析中..."
	return m, tea.Batch(m.spin.Tick, m.submitCmd(raw, batch))
}

func (m *Model) toggleMode() {
	if m.mode == ModeSingle {
		m.mode = ModeBatch
		m.input.SetHeight(6)
		m.input.Placeholder = "每行一条文本..."
	} else {
		m.mode = ModeSingle
		m.input.SetHeight(3)
		m.input.Placeholder = "输入要分析的中文文本..."
	}
	m.statusMsg = m.statusHint()
}

// copyResult puts the raw JSON of the last response on the clipboard.
func (m Model) copyResult() (tea.Model, tea.Cmd) {
	if m.resultJSON == "" {
		m.errorMsg = "没有可复制的结果"
		return m, nil
	}
	if err := clipboard.WriteAll(m.resultJSON); err != nil {
		m.errorMsg = "复制失败: " + err.Error()
		return m, nil
	}
	m.statusMsg = "结果已复制到剪贴板"
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.input.SetWidth(msg.Width - 4)

	resultHeight := msg.Height - m.input.Height() - 6
	if resultHeight < 3 {
		resultHeight = 3
	}
	if !m.ready {
		m.results = viewport.New(msg.Width-4, resultHeight)
		m.ready = true
	} else {
		m.results.Width = msg.Width - 4
		m.results.Height = resultHeight
	}
	return m
}

func (m *Model) setResults(content string) {
	if m.ready {
		m.results.SetContent(content)
		m.results.GotoTop()
		return
	}
	// No size yet (e.g. in tests); keep content for the first resize.
	m.results = viewport.New(80, 20)
	m.ready = true
	m.results.SetContent(content)
}
