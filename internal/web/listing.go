package web

import (
	"math"
	"sort"
	"strings"

	"linkboard/internal/domain"

	"github.com/samber/lo"
)

// Filter selects links by whether they have been clicked
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

// SortKey orders the analytics cards
type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortClicks    SortKey = "clicks"
	SortTitle     SortKey = "title"
)

func parseFilter(s string) Filter {
	switch Filter(s) {
	case FilterActive, FilterInactive:
		return Filter(s)
	}
	return FilterAll
}

func parseSort(s string) SortKey {
	switch SortKey(s) {
	case SortClicks, SortTitle:
		return SortKey(s)
	}
	return SortCreatedAt
}

// FilterAndSort applies the analytics filter and ordering to a copy of links.
// It never calls the backend.
func FilterAndSort(links []domain.Link, filter Filter, key SortKey) []domain.Link {
	out := lo.Filter(links, func(l domain.Link, _ int) bool {
		switch filter {
		case FilterActive:
			return l.ClickCount > 0
		case FilterInactive:
			return l.ClickCount == 0
		}
		return true
	})

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case SortClicks:
			return a.ClickCount > b.ClickCount
		case SortTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
		return a.CreatedAt.After(b.CreatedAt.Time)
	})
	return out
}

// Summary aggregates the held page of links
type Summary struct {
	Links          int
	TotalClicks    int64
	LinksWithClick int
	AverageClicks  int64
}

func Summarize(links []domain.Link) Summary {
	total := lo.SumBy(links, func(l domain.Link) int64 { return l.ClickCount })
	s := Summary{
		Links:          len(links),
		TotalClicks:    total,
		LinksWithClick: lo.CountBy(links, func(l domain.Link) bool { return l.ClickCount > 0 }),
	}
	if len(links) > 0 {
		s.AverageClicks = int64(math.Round(float64(total) / float64(len(links))))
	}
	return s
}

// emptyMessage is shown when the filter leaves no cards
func emptyMessage(filter Filter) string {
	switch filter {
	case FilterActive:
		return "No links with clicks yet."
	case FilterInactive:
		return "Every link has been clicked at least once."
	}
	return "No links found. Create your first link from the home page!"
}
