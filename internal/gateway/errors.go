package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError is a server-rejected request (4xx/5xx with a structured body).
// Message carries the server-provided message when one was present; Fields
// carries per-field validation messages, e.g. from registration.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s: %s", name, e.Fields[name]))
		}
		return fmt.Sprintf("request rejected (%d): %s", e.StatusCode, strings.Join(pairs, "; "))
	}
	if e.Message != "" {
		return fmt.Sprintf("request rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request rejected (%d)", e.StatusCode)
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ServerMessage returns the server-provided message in err, or fallback when
// the error carries none (transport failures, empty bodies).
func ServerMessage(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseErrorBody extracts an APIError from a response body. The backend is
// not uniform: errors arrive as {"message": ...}, {"detail": ...},
// {"error": ...} or as a map of field names to message lists.
func parseErrorBody(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if len(body) == 0 {
		return apiErr
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	for _, key := range []string{"message", "detail", "error"} {
		var msg string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
			apiErr.Message = msg
			delete(payload, key)
			break
		}
	}

	// Whatever remains is treated as field-level validation output.
	for name, raw := range payload {
		var single string
		if json.Unmarshal(raw, &single) == nil {
			setField(apiErr, name, single)
			continue
		}
		var many []string
		if json.Unmarshal(raw, &many) == nil && len(many) > 0 {
			setField(apiErr, name, strings.Join(many, "; "))
		}
	}
	return apiErr
}

func setField(e *APIError, name, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[name] = message
}
