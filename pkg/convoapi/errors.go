package convoapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyBaseURL   = errors.New("base URL cannot be empty")
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// APIError is returned by the typed calls when the server answers with a
// non-2xx status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "convo api: %d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(" ")
		b.WriteString(e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == status
}

func decodeAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	var er ErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &er) == nil {
		e.Code = er.ErrorCode
		e.Message = er.Message
		e.Path = er.Path
		if e.Message == "" {
			e.Message = er.Error
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
