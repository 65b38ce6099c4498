package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/qinggan/qinggan/internal/logging"
	"github.com/qinggan/qinggan/internal/types"
)

const (
	// DefaultTimeout bounds every backend call; the backend has no
	// server-side deadline of its own.
	DefaultTimeout = 30 * time.Second

	analyzePath  = "/analyze"
	batchPath    = "/analyze/batch"
	audioPath    = "/analyze/audio"
	audioURLPath = "/analyze/audio/url"
	healthPath   = "/health"
)

// Client talks to the sentiment-analysis backend. All methods are safe
// for concurrent use; serialization of submissions is the
// orchestrator's concern, not the client's.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL. A zero timeout
// falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AnalyzeText submits one text for analysis.
func (c *Client) AnalyzeText(ctx context.Context, text string) (*types.AnalysisResult, error) {
	var result types.AnalysisResult
	if err := c.post(ctx, analyzePath, types.AnalysisRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeBatch submits an ordered list of texts. The backend returns
// one result per text in the same order.
func (c *Client) AnalyzeBatch(ctx context.Context, texts []string) ([]types.AnalysisResult, error) {
	var results []types.AnalysisResult
	if err := c.post(ctx, batchPath, types.BatchRequest{Texts: texts}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AnalyzeAudioFile uploads recorded audio for speech recognition and
// sentiment analysis. The backend takes the codec and sample rate as
// query parameters; wav at 16 kHz is its default.
func (c *Client) AnalyzeAudioFile(ctx context.Context, filename string, data []byte, format string, rate int) (*types.AnalysisResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, transportErr(fmt.Errorf("failed to encode upload: %w", err))
	}
	if _, err := part.Write(data); err != nil {
		return nil, transportErr(fmt.Errorf("failed to encode upload: %w", err))
	}
	if err := form.Close(); err != nil {
		return nil, transportErr(fmt.Errorf("failed to encode upload: %w", err))
	}

	query := url.Values{}
	query.Set("format", format)
	query.Set("rate", strconv.Itoa(rate))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+audioPath+"?"+query.Encode(), &buf)
	if err != nil {
		return nil, transportErr(err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var result types.AnalysisResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeAudioURL asks the backend to fetch audio from a URL itself,
// then recognize and analyze it.
func (c *Client) AnalyzeAudioURL(ctx context.Context, audioURL, format string, rate int) (*types.AnalysisResult, error) {
	var result types.AnalysisResult
	req := types.AudioURLRequest{AudioURL: audioURL, Format: format, Rate: rate}
	if err := c.post(ctx, audioURLPath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, transportErr(err)
	}
	var status types.HealthStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return transportErr(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return transportErr(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	startTime := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Warn("backend request failed", "path", req.URL.Path, "error", err)
		return transportErr(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(fmt.Errorf("failed to read response body: %w", err))
	}

	logging.Debug("backend request",
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(startTime).Milliseconds())

	if !isSuccessStatus(resp.StatusCode) {
		return applicationErr(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return transportErr(fmt.Errorf("malformed response from backend: %w", err))
	}
	return nil
}

// applicationErr extracts the backend's "detail" field. Bodies that
// are not the documented error shape degrade to the raw body, then to
// the HTTP status text.
func applicationErr(resp *http.Response, body []byte) error {
	appErr := &ApplicationError{Status: resp.StatusCode}

	var errResp types.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		appErr.Detail = errResp.Detail
	} else if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		appErr.Detail = trimmed
	} else {
		appErr.Detail = resp.Status
	}
	return appErr
}

func transportErr(err error) error {
	return &TransportError{Err: err, Hint: categorizeTransportError(err.Error())}
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
