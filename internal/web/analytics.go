package web

import (
	"net/http"
	"strconv"
	"strings"

	"linkboard/internal/hooks"
	"linkboard/internal/service"
)

var (
	filterOptions = []Option{
		{Value: string(FilterAll), Label: "All links"},
		{Value: string(FilterActive), Label: "With clicks"},
		{Value: string(FilterInactive), Label: "Without clicks"},
	}
	sortOptions = []Option{
		{Value: string(SortCreatedAt), Label: "Newest first"},
		{Value: string(SortClicks), Label: "Most clicked"},
		{Value: string(SortTitle), Label: "Title"},
	}
	dayOptions = []int{7, 30, 90}
)

func selectOptions(opts []Option, selected string) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		o.Selected = o.Value == selected
		out[i] = o
	}
	return out
}

// Analytics handles GET /analytics
//
// Filter and sort apply to the held page only and never reach the backend.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()

	pageNum := queryInt(r, "page", service.DefaultPage)
	size := queryInt(r, "size", service.DefaultPageSize)
	if pageNum < 0 {
		pageNum = service.DefaultPage
	}
	if size <= 0 || size > 100 {
		size = service.DefaultPageSize
	}
	filter := parseFilter(r.URL.Query().Get("filter"))
	sortKey := parseSort(r.URL.Query().Get("sort"))

	snap := s.Links.Snapshot()
	switch {
	case pageNum != snap.Page || size != snap.Size:
		h.report(r, "list links", s.Links.SetPage(ctx, pageNum, size))
	case r.URL.Query().Get("refresh") == "1" || snap.Phase == hooks.Idle || snap.Phase == hooks.Failure:
		h.report(r, "list links", s.Links.Load(ctx))
	}

	view := s.Links.Snapshot()
	page := analyticsPage{
		Filters:       selectOptions(filterOptions, string(filter)),
		Sorts:         selectOptions(sortOptions, string(sortKey)),
		Filter:        string(filter),
		Sort:          string(sortKey),
		EmptyMessage:  emptyMessage(filter),
		Page:          view.Page,
		Size:          view.Size,
		TotalPages:    view.TotalPages,
		TotalElements: view.TotalElements,
	}
	status := http.StatusOK

	switch view.Phase {
	case hooks.Idle, hooks.Loading:
		page.Loading = true
	case hooks.Failure:
		page.Err = view.Err
		status = http.StatusBadGateway
	case hooks.Success:
		items := view.Items()
		page.Summary = Summarize(items)
		page.Cards = h.cards(FilterAndSort(items, filter, sortKey), r.URL.RequestURI())
		page.HasPrev = view.Page > 0
		page.HasNext = view.Page+1 < view.TotalPages
		page.PrevPage = view.Page - 1
		page.NextPage = view.Page + 1
	}

	page.basePage = h.base(ctx, s, "Analytics", "analytics")
	page.Refresh = page.Loading
	h.render(w, r, status, "analytics.html", page)
}

// LinkAnalytics handles GET /analytics/{id}?days=
func (h *Handler) LinkAnalytics(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		h.renderError(w, r, s, http.StatusBadRequest, "Invalid link id")
		return
	}
	days := queryInt(r, "days", service.DefaultAnalyticsDays)
	if days <= 0 {
		days = service.DefaultAnalyticsDays
	}

	curID, curDays := s.Analytics.Params()
	state := s.Analytics.Snapshot()
	switch {
	case id != curID || days != curDays:
		h.report(r, "link analytics", s.Analytics.SetParams(ctx, id, days))
	case r.URL.Query().Get("refresh") == "1" || state.Phase == hooks.Idle || state.Phase == hooks.Failure:
		h.report(r, "link analytics", s.Analytics.Fetch(ctx))
	}

	options := make([]Option, 0, len(dayOptions))
	for _, d := range dayOptions {
		v := strconv.Itoa(d)
		options = append(options, Option{Value: v, Label: "Last " + v + " days", Selected: d == days})
	}

	page := linkAnalyticsPage{ID: id, Days: days, DayOptions: options, QRImage: h.qr.ImageURL(id)}
	status := http.StatusOK

	state = s.Analytics.Snapshot()
	switch state.Phase {
	case hooks.Idle, hooks.Loading:
		page.Loading = true
	case hooks.Failure:
		page.Err = state.Err
		status = http.StatusBadGateway
	case hooks.Success:
		data := state.Data
		page.Data = data
		page.ShortURL = h.origin + "/" + data.ShortCode
		page.Daily = NewLineChart(data.DailyClicks)
		page.Hourly = NewBarChart(data.HourlyClicks)
	}

	page.basePage = h.base(ctx, s, "Link analytics", "analytics")
	page.Refresh = page.Loading
	h.render(w, r, status, "link_analytics.html", page)
}

// Search handles GET /search?q=. Without a query it lists the most clicked links.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	page := searchPage{Query: q}
	status := http.StatusOK

	if q == "" {
		page.Heading = "Top links"
		links, err := h.links.Top(ctx, s.Credential, service.DefaultTopLimit)
		if err != nil {
			h.report(r, "top links", err)
			page.Err = "Failed to load top links"
		}
		page.Cards = h.cards(links, r.URL.RequestURI())
	} else {
		page.Heading = "Results for \"" + q + "\""
		links, err := h.links.Search(ctx, s.Credential, q)
		if err != nil {
			h.report(r, "search links", err)
			page.Err = "Search failed"
			status = http.StatusBadGateway
		}
		page.Cards = h.cards(links, r.URL.RequestURI())
	}

	page.basePage = h.base(ctx, s, "Search", "search")
	h.render(w, r, status, "search.html", page)
}
