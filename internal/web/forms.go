package web

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"linkboard/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	msgURLRequired = "URL is required"
	msgURLInvalid  = "Please enter a valid URL starting with http:// or https://"
)

var (
	httpPattern  = regexp.MustCompile(`^https?://.+`)
	aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// FieldErrors maps a form field name to its message
type FieldErrors map[string]string

// LinkForm is the create and edit form as submitted by the browser
type LinkForm struct {
	OriginalURL string `json:"originalUrl"`
	CustomAlias string `json:"customAlias"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func parseLinkForm(r *http.Request) LinkForm {
	return LinkForm{
		OriginalURL: strings.TrimSpace(r.PostFormValue("originalUrl")),
		CustomAlias: strings.TrimSpace(r.PostFormValue("customAlias")),
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
}

// urlRules accept exactly the absolute http(s) URLs
func urlRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(msgURLRequired),
		validation.Match(httpPattern).Error(msgURLInvalid),
		validation.By(absoluteURL),
	}
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New(msgURLInvalid)
	}
	return nil
}

func (f LinkForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.OriginalURL, urlRules()...),
		validation.Field(&f.CustomAlias,
			validation.Length(aliasMinLength, aliasMaxLength).Error("Custom alias must be between 3 and 20 characters"),
			validation.Match(aliasPattern).Error("Custom alias can only contain letters, numbers, underscores and hyphens"),
		),
		validation.Field(&f.Title, validation.RuneLength(0, 200).Error("Title must be at most 200 characters")),
		validation.Field(&f.Description, validation.RuneLength(0, 500).Error("Description must be at most 500 characters")),
	)
}

// ValidateURL checks a single URL with the same rules as the create form
func ValidateURL(raw string) error {
	return validation.Validate(raw, urlRules()...)
}

// fieldErrors flattens an ozzo error into per-field messages. Errors that are
// not per-field land under "form".
func fieldErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	out := FieldErrors{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, e := range verrs {
			out[field] = e.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

func (f LinkForm) CreateRequest() domain.CreateLinkRequest {
	return domain.CreateLinkRequest{
		OriginalURL: f.OriginalURL,
		CustomAlias: f.CustomAlias,
		Title:       f.Title,
		Description: f.Description,
	}
}

func (f LinkForm) UpdateRequest() domain.UpdateLinkRequest {
	return domain.UpdateLinkRequest{
		OriginalURL: f.OriginalURL,
		CustomAlias: f.CustomAlias,
		Title:       f.Title,
		Description: f.Description,
	}
}

// formFromLink prefills the edit form
func formFromLink(l domain.Link) LinkForm {
	return LinkForm{
		OriginalURL: l.OriginalURL,
		CustomAlias: l.CustomAlias,
		Title:       l.Title,
		Description: l.Description,
	}
}

// BulkLine is one line of the bulk import textarea
type BulkLine struct {
	Line  int
	URL   string
	Error string
}

// parseBulk splits the textarea into one URL per non-blank line and validates
// each. ok is false when any line is invalid.
func parseBulk(text string) (reqs []domain.CreateLinkRequest, lines []BulkLine, ok bool) {
	ok = true
	for i, raw := range strings.Split(text, "\n") {
		u := strings.TrimSpace(raw)
		if u == "" {
			continue
		}
		line := BulkLine{Line: i + 1, URL: u}
		if err := ValidateURL(u); err != nil {
			line.Error = err.Error()
			ok = false
		}
		lines = append(lines, line)
		reqs = append(reqs, domain.CreateLinkRequest{OriginalURL: u})
	}
	if len(lines) == 0 {
		ok = false
	}
	return reqs, lines, ok
}
