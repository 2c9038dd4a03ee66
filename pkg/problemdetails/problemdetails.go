package problemdetails

import (
	"fmt"
	"net/http"
)

const (
	TypeInvalidRequest    = "invalid-request"
	TypeRateLimitExceeded = "rate-limit-exceeded"
	TypeInternalError     = "internal-error"
	TypeValidationError   = "validation-error"
)

const typeBase = "https://linkboard.dev/problems/"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   typeBase + problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewValidation(errors []FieldError) *ProblemDetail {
	return &ProblemDetail{
		Type:   typeBase + TypeValidationError,
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "Request validation failed",
		Errors: errors,
	}
}

// Summary renders the problem as a single human readable line.
func (p *ProblemDetail) Summary() string {
	switch {
	case p == nil:
		return ""
	case p.Detail != "" && p.Title != "":
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	case p.Detail != "":
		return p.Detail
	case p.Title != "":
		return p.Title
	default:
		return http.StatusText(p.Status)
	}
}
