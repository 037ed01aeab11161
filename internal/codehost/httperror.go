package codehost

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/seekwell/profile-discovery/internal/redact"
)

// ErrNotFound is returned when the platform reports no such user.
var ErrNotFound = errors.New("codehost: not found")

// errorEnvelope is the platform's standard error response shape.
type errorEnvelope struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// APIError is a sanitized summary of a non-2xx platform response.
//
// Important: do not include raw response bodies here (can leak PII/tokens).
type APIError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string

	// Snippet is a redacted, truncated hint for unstructured responses.
	Snippet string
}

func (e *APIError) Error() string {
	if e == nil {
		return "codehost api error"
	}
	parts := []string{
		fmt.Sprintf("codehost api error: op=%s status=%s", strings.TrimSpace(e.Op), strings.TrimSpace(e.Status)),
	}
	if strings.TrimSpace(e.Message) != "" {
		parts = append(parts, "message="+strings.TrimSpace(e.Message))
	}
	if strings.TrimSpace(e.Snippet) != "" {
		parts = append(parts, "body="+strings.TrimSpace(e.Snippet))
	}
	return strings.Join(parts, " ")
}

// Transient reports whether retrying the request may help.
func (e *APIError) Transient() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode/100 == 5
}

func newAPIError(op string, resp *http.Response, body []byte) *APIError {
	h := &APIError{Op: op}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}

	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil && strings.TrimSpace(env.Message) != "" {
		h.Message = strings.TrimSpace(env.Message)
		return h
	}

	h.Snippet = redactAndTruncate(body)
	return h
}

func redactAndTruncate(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	// Keep this small: response bodies can contain sensitive data.
	const max = 256
	b := body
	if len(b) > max {
		b = b[:max]
	}
	s := redact.Secrets(string(b))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(body) > max {
		return s + "..."
	}
	return s
}
