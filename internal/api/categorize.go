package api

import "strings"

// categorizeTransportError maps low-level network error strings to a
// short actionable hint. Returns "" when the error is not recognized;
// the raw error message is always shown either way.
func categorizeTransportError(errStr string) string {
	if errStr == "" {
		return ""
	}

	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "context canceled") ||
		strings.Contains(errLower, "context cancelled") {
		return "request cancelled"
	}

	if strings.Contains(errLower, "context deadline exceeded") ||
		strings.Contains(errLower, "deadline exceeded") {
		return "request timed out - is the analysis backend responding?"
	}

	if strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "dial tcp: lookup") {
		return "DNS resolution failed - verify the server address"
	}

	if strings.Contains(errLower, "connection refused") {
		return "connection refused - is the analysis backend running?"
	}

	if strings.Contains(errLower, "connection reset") {
		return "connection reset by the backend"
	}

	if strings.Contains(errLower, "network is unreachable") ||
		strings.Contains(errLower, "no route to host") {
		return "network unreachable - check your connection"
	}

	if strings.Contains(errLower, "unexpected eof") ||
		strings.Contains(errLower, "eof") {
		return "connection closed before the response completed"
	}

	if strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "timed out") {
		return "the backend took too long to respond"
	}

	if strings.Contains(errLower, "unsupported protocol") ||
		strings.Contains(errLower, "invalid url") {
		return "invalid server URL - check the configured origin"
	}

	return ""
}
