package problemdetails_test

import (
	"net/http"
	"testing"

	"linkboard/pkg/problemdetails"

	"github.com/stretchr/testify/assert"
)

func TestNew_BuildsTypeURI(t *testing.T) {
	p := problemdetails.New(http.StatusBadRequest, problemdetails.TypeInvalidRequest, "Bad Request", "Malformed form submission")

	assert.Equal(t, "https://linkboard.dev/problems/invalid-request", p.Type)
	assert.Equal(t, http.StatusBadRequest, p.Status)
}

func TestNewValidation_CarriesFieldErrors(t *testing.T) {
	p := problemdetails.NewValidation([]problemdetails.FieldError{
		{Field: "originalUrl", Message: "URL is required"},
	})

	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "https://linkboard.dev/problems/validation-error", p.Type)
	assert.Len(t, p.Errors, 1)
}

func TestSummary_PrefersTitleAndDetail(t *testing.T) {
	tests := []struct {
		name    string
		problem *problemdetails.ProblemDetail
		want    string
	}{
		{"nil", nil, ""},
		{"both", &problemdetails.ProblemDetail{Title: "Bad Request", Detail: "alias taken"}, "Bad Request: alias taken"},
		{"detail only", &problemdetails.ProblemDetail{Detail: "alias taken"}, "alias taken"},
		{"title only", &problemdetails.ProblemDetail{Title: "Conflict"}, "Conflict"},
		{"status only", &problemdetails.ProblemDetail{Status: http.StatusBadGateway}, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.problem.Summary())
		})
	}
}
