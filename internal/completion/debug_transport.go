package completion

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"promptdeck/internal/logger"
)

const redacted = "***[REDACTED]***"

// DebugTransport wraps an http.RoundTripper and records the last exchange with
// credentials redacted. It is enabled by debug-level logging.
type DebugTransport struct {
	base http.RoundTripper

	mu   sync.RWMutex
	last string
}

// NewDebugTransport wraps base, or http.DefaultTransport when base is nil.
func NewDebugTransport(base http.RoundTripper) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base}
}

// LastExchange returns the JSON record of the most recent request/response pair.
func (d *DebugTransport) LastExchange() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// RoundTrip implements http.RoundTripper.
func (d *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	request := map[string]any{
		"method":  req.Method,
		"url":     sanitizeURL(req),
		"headers": sanitizeHeaders(req.Header),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
		request["body"] = decodeBody(body)
	}

	resp, err := d.base.RoundTrip(req)
	end := time.Now()

	response := map[string]any{}
	if err != nil {
		response["error"] = err.Error()
	} else {
		response["status_code"] = resp.StatusCode
		response["headers"] = sanitizeHeaders(resp.Header)
		if resp.Body != nil {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(body))
			if readErr == nil {
				response["body"] = decodeBody(body)
			}
		}
	}

	d.store(map[string]any{
		"http_request":  request,
		"http_response": response,
		"timing": map[string]any{
			"request_time": start.Format(time.RFC3339),
			"duration_ms":  end.Sub(start).Milliseconds(),
		},
	})
	return resp, err
}

func (d *DebugTransport) store(record map[string]any) {
	data, err := json.Marshal(record)
	if err != nil {
		logger.Error("Failed to marshal debug data", "error", err)
		return
	}

	d.mu.Lock()
	d.last = string(data)
	d.mu.Unlock()
	logger.Debug("HTTP exchange captured", "data_length", len(data))
}

func decodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "authorization") ||
		strings.Contains(lower, "api-key") ||
		strings.Contains(lower, "token")
}

func sanitizeHeaders(headers http.Header) map[string][]string {
	sanitized := make(map[string][]string, len(headers))
	for name, values := range headers {
		if isSensitiveHeader(name) {
			sanitized[name] = []string{redacted}
			continue
		}
		sanitized[name] = values
	}
	return sanitized
}

// sanitizeURL masks a "key" query parameter, which some providers accept as a credential.
func sanitizeURL(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	u := *req.URL
	q := u.Query()
	if q.Has("key") {
		q.Set("key", redacted)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
