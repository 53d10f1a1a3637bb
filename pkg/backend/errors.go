package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized reports a 401 from the backend; by then the stored token
// has already been cleared.
var ErrUnauthorized = errors.New("backend: unauthorized")

// APIError is a non-2xx backend response reduced to a display message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type validationItem struct {
	Msg string `json:"msg"`
	Loc []any  `json:"loc"`
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// parseErrorBody extracts a user-facing message from an error response body,
// in priority order: validation array, detail string, message, generic.
func parseErrorBody(status int, body []byte) string {
	fallback := fmt.Sprintf("Request failed with status %d. Please try again.", status)
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	// FastAPI puts validation errors either at the top level or under detail.
	var items []validationItem
	if err := json.Unmarshal([]byte(trimmed), &items); err == nil && len(items) > 0 {
		if message := formatValidationItems(items); message != "" {
			return message
		}
	}

	var parsed errorBody
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return fallback
	}

	if len(parsed.Detail) > 0 {
		if err := json.Unmarshal(parsed.Detail, &items); err == nil && len(items) > 0 {
			if message := formatValidationItems(items); message != "" {
				return message
			}
		}

		var detail string
		if err := json.Unmarshal(parsed.Detail, &detail); err == nil && strings.TrimSpace(detail) != "" {
			return detail
		}
	}

	if strings.TrimSpace(parsed.Message) != "" {
		return parsed.Message
	}

	return fallback
}

func formatValidationItems(items []validationItem) string {
	messages := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg == "" {
			continue
		}
		if len(item.Loc) > 0 {
			messages = append(messages, fmt.Sprintf("%s (%s)", item.Msg, joinLoc(item.Loc)))
		} else {
			messages = append(messages, item.Msg)
		}
	}
	return strings.Join(messages, ", ")
}

func joinLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for _, segment := range loc {
		switch v := segment.(type) {
		case string:
			parts = append(parts, v)
		case float64:
			parts = append(parts, fmt.Sprintf("%d", int(v)))
		default:
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(parts, ".")
}
