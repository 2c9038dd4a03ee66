package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"linkboard/pkg/problemdetails"
)

var (
	ErrUnauthorized = errors.New("backend requires authentication")
	ErrNotFound     = errors.New("resource not found")
	ErrTransport    = errors.New("backend unreachable")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Problem *problemdetails.ProblemDetail
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message())
}

// Is lets callers match on ErrUnauthorized and ErrNotFound with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message is the human readable part of the failure.
func (e *APIError) Message() string {
	if e.Problem != nil {
		if s := e.Problem.Summary(); s != "" {
			return s
		}
	}
	return http.StatusText(e.Status)
}

// Message returns a message fit for showing to a user for any error produced
// by this package.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrTransport) {
		return "Network error: the server could not be reached"
	}
	return err.Error()
}

// errorBody covers RFC 7807 bodies as well as the default Spring error shape
// ({"error": "...", "message": "..."}).
type errorBody struct {
	Type    string                      `json:"type"`
	Title   string                      `json:"title"`
	Status  int                         `json:"status"`
	Detail  string                      `json:"detail"`
	Errors  []problemdetails.FieldError `json:"errors"`
	Error   string                      `json:"error"`
	Message string                      `json:"message"`
}

// decodeProblem turns an error body into a ProblemDetail, or nil when the body
// is not JSON.
func decodeProblem(status int, contentType string, body []byte) *problemdetails.ProblemDetail {
	if len(body) == 0 || !strings.Contains(contentType, "json") {
		return nil
	}

	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		return nil
	}

	p := &problemdetails.ProblemDetail{
		Type:   b.Type,
		Title:  b.Title,
		Status: status,
		Detail: b.Detail,
		Errors: b.Errors,
	}
	if p.Title == "" {
		p.Title = b.Error
	}
	if p.Detail == "" {
		p.Detail = b.Message
	}
	return p
}
