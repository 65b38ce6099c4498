package analyze

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/qinggan/qinggan/internal/api"
	"github.com/qinggan/qinggan/internal/stats"
	"github.com/qinggan/qinggan/internal/types"
)

// fakeBackend records calls and returns canned responses.
type fakeBackend struct {
	mu          sync.Mutex
	textCalls   []string
	batchCalls  [][]string
	result      *types.AnalysisResult
	results     []types.AnalysisResult
	err         error
	block       chan struct{} // when set, calls wait until closed
}

func (f *fakeBackend) AnalyzeText(ctx context.Context, text string) (*types.AnalysisResult, error) {
	f.mu.Lock()
	f.textCalls = append(f.textCalls, text)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBackend) AnalyzeBatch(ctx context.Context, texts []string) ([]types.AnalysisResult, error) {
	f.mu.Lock()
	f.batchCalls = append(f.batchCalls, texts)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// recordingView records every callback in order.
type recordingView struct {
	mu          sync.Mutex
	singles     []types.AnalysisResult
	batches     [][]types.AnalysisResult
	loadingLog  []bool
	notified    []error
}

func (v *recordingView) RenderSingleResult(r types.AnalysisResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.singles = append(v.singles, r)
}

func (v *recordingView) RenderBatchResults(rs []types.AnalysisResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.batches = append(v.batches, rs)
}

func (v *recordingView) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loadingLog = append(v.loadingLog, loading)
}

func (v *recordingView) Notify(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notified = append(v.notified, err)
}

func TestSubmitText_BlankInputFailsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs and newlines", "\t\n  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			view := &recordingView{}
			c := New(backend, nil)

			err := c.SubmitText(context.Background(), tt.input, view)

			if !api.IsValidation(err) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if len(backend.textCalls) != 0 {
				t.Errorf("network call made for blank input: %v", backend.textCalls)
			}
			if len(view.loadingLog) != 0 {
				t.Errorf("loading state entered for blank input: %v", view.loadingLog)
			}
			if len(view.notified) != 1 {
				t.Errorf("notifications = %d, want 1", len(view.notified))
			}
		})
	}
}

func TestSubmitText_TrimsBeforeSending(t *testing.T) {
	backend := &fakeBackend{result: &types.AnalysisResult{Sentiment: "积极"}}
	view := &recordingView{}
	c := New(backend, nil)

	if err := c.SubmitText(context.Background(), "  今天很开心  ", view); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if len(backend.textCalls) != 1 || backend.textCalls[0] != "今天很开心" {
		t.Errorf("sent %v, want [今天很开心]", backend.textCalls)
	}
}

func TestSubmitText_SuccessRendersExactlyOnce(t *testing.T) {
	backend := &fakeBackend{result: &types.AnalysisResult{Sentiment: "积极", Score: 0.87}}
	view := &recordingView{}
	c := New(backend, nil)

	if err := c.SubmitText(context.Background(), "今天很开心", view); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if len(view.singles) != 1 {
		t.Fatalf("renders = %d, want 1", len(view.singles))
	}
	if len(view.notified) != 0 {
		t.Errorf("notifications on success: %v", view.notified)
	}
	if !reflect.DeepEqual(view.loadingLog, []bool{true, false}) {
		t.Errorf("loading log = %v, want [true false]", view.loadingLog)
	}
}

func TestSubmitText_FailureNotifiesAndClearsLoading(t *testing.T) {
	appErr := &api.ApplicationError{Status: 500, Detail: "model unavailable"}
	backend := &fakeBackend{err: appErr}
	view := &recordingView{}
	c := New(backend, nil)

	err := c.SubmitText(context.Background(), "今天很开心", view)

	var got *api.ApplicationError
	if !errors.As(err, &got) || got.Detail != "model unavailable" {
		t.Fatalf("got %v, want the backend error", err)
	}
	if len(view.singles) != 0 {
		t.Errorf("rendered on failure: %v", view.singles)
	}
	if len(view.notified) != 1 || view.notified[0].Error() != "model unavailable" {
		t.Errorf("notifications = %v", view.notified)
	}
	if !reflect.DeepEqual(view.loadingLog, []bool{true, false}) {
		t.Errorf("loading log = %v, want [true false]", view.loadingLog)
	}
	if c.Busy() {
		t.Error("coordinator still busy after failure")
	}
}

func TestSubmitBatch_SplitsAndPreservesOrder(t *testing.T) {
	backend := &fakeBackend{results: []types.AnalysisResult{{Text: "a"}, {Text: "b"}, {Text: "c"}}}
	view := &recordingView{}
	c := New(backend, nil)

	if err := c.SubmitBatch(context.Background(), "a\n\nb\n  \nc", view); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(backend.batchCalls) != 1 || !reflect.DeepEqual(backend.batchCalls[0], want) {
		t.Errorf("sent %v, want %v", backend.batchCalls, want)
	}
	if len(view.batches) != 1 {
		t.Errorf("batch renders = %d, want 1", len(view.batches))
	}
}

func TestSubmitBatch_AllBlankFailsBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	view := &recordingView{}
	c := New(backend, nil)

	err := c.SubmitBatch(context.Background(), "\n  \n\t\n", view)

	if !api.IsValidation(err) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(backend.batchCalls) != 0 {
		t.Errorf("network call made: %v", backend.batchCalls)
	}
}

func TestSubmit_RejectsSecondWhileInFlight(t *testing.T) {
	backend := &fakeBackend{
		result: &types.AnalysisResult{Sentiment: "积极"},
		block:  make(chan struct{}),
	}
	view := &recordingView{}
	c := New(backend, nil)

	done := make(chan error, 1)
	go func() {
		done <- c.SubmitText(context.Background(), "第一条", view)
	}()

	// Wait until the first submission reaches the backend.
	for {
		backend.mu.Lock()
		started := len(backend.textCalls) == 1
		backend.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.SubmitText(context.Background(), "第二条", view); !errors.Is(err, ErrBusy) {
		t.Errorf("second submission: got %v, want ErrBusy", err)
	}
	if err := c.SubmitBatch(context.Background(), "第三条", view); !errors.Is(err, ErrBusy) {
		t.Errorf("batch during single: got %v, want ErrBusy", err)
	}

	close(backend.block)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// Guard is released after completion.
	if err := c.SubmitText(context.Background(), "第四条", view); err != nil {
		t.Errorf("submission after completion failed: %v", err)
	}
}

func TestSubmit_RecordsStats(t *testing.T) {
	backend := &fakeBackend{results: []types.AnalysisResult{
		{Text: "a", Sentiment: "积极", Score: 0.8},
		{Text: "b", Sentiment: "消极", Score: 0.2},
	}}
	view := &recordingView{}
	tracker := stats.NewTracker()
	c := New(backend, tracker)

	if err := c.SubmitBatch(context.Background(), "a\nb", view); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	s := tracker.Snapshot()
	if s.TotalAnalyzed != 2 || s.Positive != 1 || s.Negative != 1 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "a\nb\nc", []string{"a", "b", "c"}},
		{"blank lines dropped", "a\n\nb\n  \nc", []string{"a", "b", "c"}},
		{"windows line endings", "a\r\nb\r\n", []string{"a", "b"}},
		{"trims each line", "  a  \n b ", []string{"a", "b"}},
		{"all blank", "\n \n\t", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitLines(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
