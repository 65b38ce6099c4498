package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnalysisRequest is the body sent to POST /analyze
type AnalysisRequest struct {
	Text string `json:"text"`
}

// BatchRequest is the body sent to POST /analyze/batch
// Texts keeps the order in which lines were submitted.
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// AudioURLRequest is the body of POST /analyze/audio/url. The backend
// downloads the audio itself, runs speech recognition, and analyzes
// the recognized text.
type AudioURLRequest struct {
	AudioURL string `json:"audio_url"`
	Format   string `json:"format"`
	Rate     int    `json:"rate"`
}

// AnalysisResult is a single analysis returned by the backend.
// Text is echoed back in batch responses and empty for single analysis.
type AnalysisResult struct {
	Text      string  `json:"text,omitempty"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
	Intensity string  `json:"intensity"`
	Details   Details `json:"details,omitempty"`
}

// EmotionScore is one entry of the per-emotion breakdown.
type EmotionScore struct {
	Key   string
	Value float64
}

// Details is the per-emotion score map. It is kept as a slice so that
// the key order of the backend's JSON object survives decoding; the
// renderer iterates details in exactly the order the backend sent them.
type Details []EmotionScore

// Get returns the score for an emotion key.
func (d Details) Get(key string) (float64, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

// UnmarshalJSON decodes a JSON object while preserving key order.
func (d *Details) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("details: expected JSON object, got %v", tok)
	}

	out := Details{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("details: expected string key, got %v", keyTok)
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("details: value for %q: %w", key, err)
		}
		out = append(out, EmotionScore{Key: key, Value: value})
	}
	*d = out
	return nil
}

// MarshalJSON encodes the details back to a JSON object in order.
func (d Details) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML keeps the same ordering for YAML output.
func (d Details) MarshalYAML() (interface{}, error) {
	out := make([]map[string]float64, 0, len(d))
	for _, e := range d {
		out = append(out, map[string]float64{e.Key: e.Value})
	}
	return out, nil
}

// ErrorResponse is the body the backend sends with non-2xx statuses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthStatus is the response of GET /health
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// RealtimeRequest is one frame sent over the /ws/analyze socket.
type RealtimeRequest struct {
	Type string `json:"type"` // currently always "text"
	Data string `json:"data"`
}

// RealtimeResponse is one frame received over the /ws/analyze socket.
// Type is "text_result" for analysis frames and "error" for failures;
// exactly one of Result / Detail is populated.
type RealtimeResponse struct {
	Type   string          `json:"type"`
	Result *AnalysisResult `json:"result,omitempty"`
	Detail string          `json:"detail,omitempty"`
}
