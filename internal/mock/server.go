// Package mock runs a stub analysis backend for development and
// demos: it speaks the real backend's HTTP and WebSocket contract but
// answers from a canned responder instead of a model.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qinggan/qinggan/internal/logging"
	"github.com/qinggan/qinggan/internal/types"
)

// Config controls the stub server.
type Config struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Delay int    `yaml:"delay"` // per-request delay in milliseconds
}

// RequestLog records one handled request.
type RequestLog struct {
	Timestamp time.Time
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
}

// Server is the stub backend.
type Server struct {
	config     Config
	httpServer *http.Server
	upgrader   websocket.Upgrader

	logsMutex sync.RWMutex
	logs      []RequestLog
}

// NewServer creates a stub server. Zero config fields get the real
// backend's defaults.
func NewServer(config Config) *Server {
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.Host == "" {
		config.Host = "127.0.0.1"
	}
	return &Server{config: config}
}

// Handler returns the route table; tests mount it on httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/analyze/batch", s.handleBatch)
	mux.HandleFunc("/analyze/audio", s.handleAudio)
	mux.HandleFunc("/analyze/audio/url", s.handleAudioURL)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws/analyze", s.handleRealtime)
	return mux
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler: s.Handler(),
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("mock server error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down, waiting up to five seconds for in-flight
// requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Address returns the origin clients should point at.
func (s *Server) Address() string {
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		s.reply(w, r, start, http.StatusMethodNotAllowed, types.ErrorResponse{Detail: "method not allowed"})
		return
	}

	var req types.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "文本不能为空"})
		return
	}

	s.delay()
	result := Respond(req.Text)
	result.Text = ""
	s.reply(w, r, start, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		s.reply(w, r, start, http.StatusMethodNotAllowed, types.ErrorResponse{Detail: "method not allowed"})
		return
	}

	var req types.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "invalid request body"})
		return
	}
	if len(req.Texts) == 0 {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "文本列表不能为空"})
		return
	}

	s.delay()
	results := make([]types.AnalysisResult, len(req.Texts))
	for i, text := range req.Texts {
		results[i] = Respond(text)
	}
	s.reply(w, r, start, http.StatusOK, results)
}

// handleAudio has no speech recognizer; it answers as if the uploaded
// file transcribed to its own filename, which keeps responses
// deterministic per input.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		s.reply(w, r, start, http.StatusMethodNotAllowed, types.ErrorResponse{Detail: "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "缺少音频文件"})
		return
	}
	file.Close()

	s.delay()
	result := Respond(header.Filename)
	result.Text = ""
	s.reply(w, r, start, http.StatusOK, result)
}

func (s *Server) handleAudioURL(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		s.reply(w, r, start, http.StatusMethodNotAllowed, types.ErrorResponse{Detail: "method not allowed"})
		return
	}

	var req types.AudioURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.AudioURL) == "" {
		s.reply(w, r, start, http.StatusBadRequest, types.ErrorResponse{Detail: "音频地址不能为空"})
		return
	}

	s.delay()
	result := Respond(req.AudioURL)
	result.Text = ""
	s.reply(w, r, start, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.reply(w, r, start, http.StatusOK, types.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
		Version:   "mock",
	})
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.logRequest(RequestLog{
		Timestamp: start,
		Method:    r.Method,
		Path:      r.URL.Path,
		Status:    http.StatusSwitchingProtocols,
	})

	for {
		var req types.RealtimeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		var resp types.RealtimeResponse
		if strings.TrimSpace(req.Data) == "" {
			resp = types.RealtimeResponse{Type: "error", Detail: "文本不能为空"}
		} else {
			s.delay()
			result := Respond(req.Data)
			resp = types.RealtimeResponse{Type: "text_result", Result: &result}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, start time.Time, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)

	s.logRequest(RequestLog{
		Timestamp: start,
		Method:    r.Method,
		Path:      r.URL.Path,
		Status:    status,
		Duration:  time.Since(start),
	})
}

func (s *Server) delay() {
	if s.config.Delay > 0 {
		time.Sleep(time.Duration(s.config.Delay) * time.Millisecond)
	}
}

// logRequest keeps a bounded in-memory record of handled requests.
func (s *Server) logRequest(entry RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)
	if len(s.logs) > 1000 {
		s.logs = s.logs[len(s.logs)-1000:]
	}
}

// Logs returns a copy of the request log.
func (s *Server) Logs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}
