package mock

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/qinggan/qinggan/internal/api"
)

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(Config{}).Handler())
	t.Cleanup(server.Close)
	return server
}

func TestHandleAnalyze(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	result, err := client.AnalyzeText(context.Background(), "今天很开心")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if result.Sentiment != "积极" {
		t.Errorf("sentiment = %q, want 积极 for a positive cue", result.Sentiment)
	}
	if len(result.Details) == 0 {
		t.Error("expected emotion details")
	}
}

func TestHandleAnalyze_RejectsBlank(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	_, err := client.AnalyzeText(context.Background(), "   ")
	appErr, ok := err.(*api.ApplicationError)
	if !ok {
		t.Fatalf("got %T (%v), want ApplicationError", err, err)
	}
	if appErr.Status != 400 || appErr.Detail != "文本不能为空" {
		t.Errorf("error = %+v", appErr)
	}
}

func TestHandleBatch(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	results, err := client.AnalyzeBatch(context.Background(), []string{"今天很开心", "服务太差", "天气"})
	if err != nil {
		t.Fatalf("AnalyzeBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Text != "今天很开心" || results[0].Sentiment != "积极" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Sentiment != "消极" {
		t.Errorf("results[1].Sentiment = %q", results[1].Sentiment)
	}
	if results[2].Sentiment != "中性" {
		t.Errorf("results[2].Sentiment = %q", results[2].Sentiment)
	}
}

func TestHandleAudio(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	// The stub transcribes an upload to its filename, so a cue word in
	// the name drives the canned sentiment.
	result, err := client.AnalyzeAudioFile(context.Background(),
		"开心.wav", []byte("not real audio"), "wav", 16000)
	if err != nil {
		t.Fatalf("AnalyzeAudioFile failed: %v", err)
	}
	if result.Sentiment != "积极" {
		t.Errorf("sentiment = %q, want 积极 for a positive cue", result.Sentiment)
	}
	if result.Text != "" {
		t.Errorf("single result should not echo text, got %q", result.Text)
	}
}

func TestHandleAudioURL(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	result, err := client.AnalyzeAudioURL(context.Background(),
		"https://example.com/太差.wav", "wav", 16000)
	if err != nil {
		t.Fatalf("AnalyzeAudioURL failed: %v", err)
	}
	if result.Sentiment != "消极" {
		t.Errorf("sentiment = %q, want 消极 for a negative cue", result.Sentiment)
	}
}

func TestHandleAudioURL_RejectsBlankURL(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	_, err := client.AnalyzeAudioURL(context.Background(), "   ", "wav", 16000)
	appErr, ok := err.(*api.ApplicationError)
	if !ok {
		t.Fatalf("got %T (%v), want ApplicationError", err, err)
	}
	if appErr.Status != 400 || appErr.Detail != "音频地址不能为空" {
		t.Errorf("error = %+v", appErr)
	}
}

func TestHandleHealth(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if status.Status != "healthy" || status.Version != "mock" {
		t.Errorf("status = %+v", status)
	}
}

func TestHandleRealtime(t *testing.T) {
	server := stubServer(t)
	client := api.New(server.URL, 0)

	session, err := client.DialRealtime(context.Background())
	if err != nil {
		t.Fatalf("DialRealtime failed: %v", err)
	}
	defer session.Close()

	if err := session.Send("今天很开心"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	frame := <-session.Frames()
	if frame.Type != "text_result" {
		t.Fatalf("frame type = %q", frame.Type)
	}
	if frame.Result == nil || frame.Result.Sentiment != "积极" {
		t.Errorf("frame result = %+v", frame.Result)
	}
}

func TestRespond_Deterministic(t *testing.T) {
	a := Respond("今天很开心")
	b := Respond("今天很开心")
	if a.Score != b.Score || a.Sentiment != b.Sentiment {
		t.Error("same input should yield the same canned result")
	}
}

func TestRespond_Intensity(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"天气", "mild"},
		{"很开心", "moderate"},
		{"开心又满意", "strong"},
	}

	for _, tt := range tests {
		if got := Respond(tt.text).Intensity; got != tt.expected {
			t.Errorf("Respond(%q).Intensity = %q, want %q", tt.text, got, tt.expected)
		}
	}
}

func TestServer_LogsRequests(t *testing.T) {
	stub := NewServer(Config{})
	server := httptest.NewServer(stub.Handler())
	defer server.Close()

	client := api.New(server.URL, 0)
	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	logs := stub.Logs()
	if len(logs) != 1 || logs[0].Path != "/health" {
		t.Errorf("logs = %+v", logs)
	}
}
