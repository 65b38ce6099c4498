// Package analyze sequences submissions to the sentiment backend: it
// validates input, holds the single-in-flight guard, and routes every
// outcome to exactly one view callback.
package analyze

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/stats"
	"github.com/qinggan/qinggan/internal/types"
)

// ErrBusy is reported when a submission arrives while another one is
// still in flight. Single and batch submissions share one guard, so
// they are mutually exclusive.
var ErrBusy = errors.New("a submission is already in progress")

// Backend is the part of the API client the coordinator needs.
type Backend interface {
	AnalyzeText(ctx context.Context, text string) (*types.AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, texts []string) ([]types.AnalysisResult, error)
}

// View receives the outcome of one submission. Implementations exist
// for the CLI printer, the TUI capture view, and test doubles; the
// coordinator never touches a terminal itself. The view is passed per
// submission so one long-lived coordinator (and its in-flight guard)
// can serve callers that need a fresh view per call.
type View interface {
	RenderSingleResult(result types.AnalysisResult)
	RenderBatchResults(results []types.AnalysisResult)
	SetLoading(loading bool)
	Notify(err error)
}

// Coordinator drives one submission at a time against the backend.
type Coordinator struct {
	backend  Backend
	tracker  *stats.Tracker
	inFlight atomic.Bool
}

// New creates a coordinator. tracker may be nil to disable statistics.
func New(backend Backend, tracker *stats.Tracker) *Coordinator {
	return &Coordinator{backend: backend, tracker: tracker}
}

// SubmitText validates and submits one text. Blank input fails with a
// ValidationError before any network activity and without entering the
// loading state. Exactly one of RenderSingleResult / Notify fires, and
// the loading state is cleared on every exit path.
func (c *Coordinator) SubmitText(ctx context.Context, raw string, view View) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		err := &api.ValidationError{Message: "请输入要分析的文本"}
		view.Notify(err)
		return err
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		view.Notify(ErrBusy)
		return ErrBusy
	}
	defer c.inFlight.Store(false)

	view.SetLoading(true)
	defer view.SetLoading(false)

	result, err := c.backend.AnalyzeText(ctx, text)
	if err != nil {
		view.Notify(err)
		return err
	}

	if c.tracker != nil {
		c.tracker.Record(*result)
	}
	view.RenderSingleResult(*result)
	return nil
}

// SubmitBatch splits multi-line input, drops blank lines, and submits
// the remainder in order. An input with no usable lines fails with a
// ValidationError before any network activity.
func (c *Coordinator) SubmitBatch(ctx context.Context, raw string, view View) error {
	texts := SplitLines(raw)
	if len(texts) == 0 {
		err := &api.ValidationError{Message: "请输入要分析的文本，每行一条"}
		view.Notify(err)
		return err
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		view.Notify(ErrBusy)
		return ErrBusy
	}
	defer c.inFlight.Store(false)

	view.SetLoading(true)
	defer view.SetLoading(false)

	results, err := c.backend.AnalyzeBatch(ctx, texts)
	if err != nil {
		view.Notify(err)
		return err
	}

	if c.tracker != nil {
		c.tracker.RecordBatch(results)
	}
	view.RenderBatchResults(results)
	return nil
}

// Busy reports whether a submission is currently in flight.
func (c *Coordinator) Busy() bool {
	return c.inFlight.Load()
}

// SplitLines turns raw multi-line input into the ordered batch
// payload: split on line breaks, trim each line, drop blanks.
func SplitLines(raw string) []string {
	var texts []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			texts = append(texts, line)
		}
	}
	return texts
}
