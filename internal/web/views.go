package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"linkboard/internal/domain"
	"linkboard/internal/notify"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{
	"home.html",
	"dashboard.html",
	"analytics.html",
	"link_analytics.html",
	"edit.html",
	"search.html",
	"token.html",
	"error.html",
}

// views holds one parsed template set per page, each sharing the layout
type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"formatNumber":   func(v any) string { return FormatNumber(toInt64(v)) },
	"formatCount":    func(v any) string { return FormatCount(toInt64(v)) },
	"formatDate":     func(v any) string { return FormatDate(toTime(v)) },
	"formatRelative": func(v any) string { return FormatRelative(toTime(v)) },
	"truncate":       func(s string, n int) string { return Truncate(s, n) },
	"domainOf":       DomainOf,
	"editPath":       editPath,
	"percent":        Percent,
	"growth":         Growth,
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	}
	return 0
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case domain.Timestamp:
		return t.Time
	case *domain.Timestamp:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

func newViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (v *views) render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %s", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// basePage is what the layout needs on every page
type basePage struct {
	Title    string
	Nav      string
	Subject  string
	HasToken bool
	Toasts   []notify.Toast
	// Refresh asks the browser to reload shortly, used while a fetch is in flight.
	Refresh bool
}

// LinkCard is a link prepared for display
type LinkCard struct {
	domain.Link
	Short      string
	QRImage    string
	QRDownload string
	TodayShare string
	// Next is where the card's toggle and delete forms return to
	Next string
}

// StatCard is one dashboard summary tile
type StatCard struct {
	Label  string
	Value  string
	Growth string
}

// Option is one choice of a select control
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type homePage struct {
	basePage
	Form      LinkForm
	Errors    FieldErrors
	Created   *LinkCard
	Bulk      string
	BulkLines []BulkLine
	BulkError string
}

type dashboardPage struct {
	basePage
	Loading      bool
	Err          string
	Cards        []StatCard
	Daily        LineChart
	Hourly       BarChart
	TopLinks     []LinkCard
	Recent       []LinkCard
	EmptyMessage string
}

type analyticsPage struct {
	basePage
	Loading       bool
	Err           string
	Summary       Summary
	Cards         []LinkCard
	Filters       []Option
	Sorts         []Option
	Filter        string
	Sort          string
	EmptyMessage  string
	Page          int
	Size          int
	TotalPages    int
	TotalElements int64
	PrevPage      int
	NextPage      int
	HasPrev       bool
	HasNext       bool
}

type linkAnalyticsPage struct {
	basePage
	ID         int64
	Days       int
	DayOptions []Option
	Loading    bool
	Err        string
	Data       *domain.LinkAnalytics
	ShortURL   string
	QRImage    string
	Daily      LineChart
	Hourly     BarChart
}

type editPage struct {
	basePage
	ID     int64
	Form   LinkForm
	Errors FieldErrors
}

type searchPage struct {
	basePage
	Query   string
	Heading string
	Cards   []LinkCard
	Err     string
}

type tokenPage struct {
	basePage
	Masked string
	Err    string
}

type errorPage struct {
	basePage
	Status  int
	Message string
}
