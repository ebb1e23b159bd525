package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRequestFailed = errors.New("request failed")
	ErrParseFailed   = errors.New("response is not valid JSON")
)

// RequestError is the only error shape the client returns for a response it
// received. Parse failures carry Parse=true and still match ErrRequestFailed.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
	Parse      bool
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrParseFailed:
		return e.Parse
	}
	return false
}

func genericStatusMessage(status int) string {
	return fmt.Sprintf("request failed with status %d", status)
}

// errorMessage pulls the most useful message out of a JSON error body.
// Django REST responses use detail/error/message or per-field lists.
func errorMessage(body []byte) (string, bool) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return "", false
	}

	for _, key := range []string{"detail", "error", "message"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg, true
		}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		switch v := payload[key].(type) {
		case string:
			parts = append(parts, key+": "+v)
		case []any:
			msgs := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				parts = append(parts, key+": "+strings.Join(msgs, " "))
			}
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "; "), true
}
