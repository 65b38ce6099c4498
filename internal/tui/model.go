package tui

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qinggan/qinggan/internal/analyze"
	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/config"
	"github.com/qinggan/qinggan/internal/keybinds"
	"github.com/qinggan/qinggan/internal/stats"
	"github.com/qinggan/qinggan/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeSingle Mode = iota // one text, enter submits
	ModeBatch              // one text per line, ctrl+s submits
	ModeStats              // session statistics overlay
)

// Model represents the TUI state
type Model struct {
	coordinator *analyze.Coordinator
	tracker     *stats.Tracker
	keys        *keybinds.Registry

	mode    Mode
	input   textarea.Model
	results viewport.Model
	spin    spinner.Model
	loading bool
	ready   bool
	width   int
	height  int

	statusMsg string
	errorMsg  string

	// resultJSON holds the raw JSON of the last successful response
	// for clipboard copy.
	resultJSON string
}

// Messages emitted by the submit command.
type (
	singleResultMsg struct {
		result types.AnalysisResult
		raw    string
	}
	batchResultMsg struct {
		results []types.AnalysisResult
		raw     string
	}
	submitErrMsg struct {
		err error
	}
)

// captureView collects the coordinator outcome so it can be delivered
// to the update loop as a message. The model owns the visual loading
// state; SetLoading here is deliberately inert.
type captureView struct {
	single *types.AnalysisResult
	batch  []types.AnalysisResult
	err    error
}

func (v *captureView) RenderSingleResult(result types.AnalysisResult) { v.single = &result }
func (v *captureView) RenderBatchResults(results []types.AnalysisResult) {
	v.batch = results
}
func (v *captureView) SetLoading(loading bool) {}
func (v *captureView) Notify(err error)        { v.err = err }

// New creates the TUI model. Key overrides come from keybinds.json in
// the config directory; a broken file falls back to the defaults.
func New(settings config.Settings) Model {
	keys, err := keybinds.LoadOrDefault(config.ConfigDir)
	if err != nil {
		keys = keybinds.NewDefaultRegistry()
	}
	m := NewWithBackend(api.New(settings.Server, settings.Timeout()))
	m.keys = keys
	m.statusMsg = m.statusHint()
	return m
}

// NewWithBackend creates the TUI model against any backend with the
// default keybindings; tests inject fakes here.
func NewWithBackend(client analyze.Backend) Model {
	ta := textarea.New()
	ta.Placeholder = "输入要分析的中文文本..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	tracker := stats.NewTracker()
	m := Model{
		coordinator: analyze.New(client, tracker),
		tracker:     tracker,
		keys:        keybinds.NewDefaultRegistry(),
		mode:        ModeSingle,
		input:       ta,
		spin:        s,
	}
	m.statusMsg = m.statusHint()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// submitCmd runs one submission off the update loop against the
// model's long-lived coordinator, so its in-flight guard spans every
// submission of the session. The capture view is per call: the guard
// admits one submission at a time, and rejected calls only see the
// returned ErrBusy.
func (m *Model) submitCmd(raw string, batch bool) tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		view := &captureView{}
		if batch {
			if err := coordinator.SubmitBatch(context.Background(), raw, view); err != nil {
				return submitErrMsg{err: err}
			}
			return batchResultMsg{results: view.batch, raw: marshalJSON(view.batch)}
		}
		if err := coordinator.SubmitText(context.Background(), raw, view); err != nil {
			return submitErrMsg{err: err}
		}
		return singleResultMsg{result: *view.single, raw: marshalJSON(*view.single)}
	}
}

func marshalJSON(value interface{}) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func (m Model) statusHint() string {
	toggle := m.keys.KeyFor(keybinds.ActionToggleMode)
	statsKey := m.keys.KeyFor(keybinds.ActionToggleStats)
	quit := m.keys.KeyFor(keybinds.ActionQuit)

	switch m.mode {
	case ModeBatch:
		return "批量模式 | " + toggle + " 单条 | " + m.keys.KeyFor(keybinds.ActionSubmitBatch) +
			" 提交 | " + statsKey + " 统计 | " + quit + " 退出"
	case ModeStats:
		return "会话统计 | " + statsKey + " 返回 | " + quit + " 退出"
	default:
		return "单条模式 | " + toggle + " 批量 | " + m.keys.KeyFor(keybinds.ActionSubmit) +
			" 提交 | " + statsKey + " 统计 | " + quit + " 退出"
	}
}

// Run starts the TUI.
func Run(settings config.Settings) error {
	p := tea.NewProgram(New(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
