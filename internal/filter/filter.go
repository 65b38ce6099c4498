// Package filter applies JMESPath expressions to JSON output in CLI
// mode, e.g. "[0].sentiment" or "[?score > `0.5`].text".
package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// Apply evaluates a JMESPath query against a JSON document and returns
// the selected value re-encoded as indented JSON. String results are
// returned bare so they compose with shell pipelines.
func Apply(body string, query string) (string, error) {
	if query == "" {
		return body, nil
	}

	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}

	result, err := jmespath.Search(query, data)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression %q: %w", query, err)
	}

	if s, ok := result.(string); ok {
		return s, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("failed to encode filtered result: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
