package web

import (
	"net/http"

	"linkboard/internal/hooks"
)

const noLinksMessage = "No links found. Create your first link from the home page!"

// dashboardReturn re-fetches after a card action, since the dashboard's
// snapshot is not patched by it.
const dashboardReturn = "/dashboard?refresh=1"

// Dashboard handles GET /dashboard
//
// Statistics are fetched when the view has nothing to show yet, after a
// failure, or when ?refresh=1 asks for it. Otherwise the held snapshot renders.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()
	refresh := r.URL.Query().Get("refresh") == "1"

	if st := s.Dashboard.Snapshot(); refresh || st.Phase == hooks.Idle || st.Phase == hooks.Failure {
		h.report(r, "dashboard stats", s.Dashboard.Fetch(ctx))
	}
	if st := s.Recent.Snapshot(); refresh || st.Phase == hooks.Idle || st.Phase == hooks.Failure {
		h.report(r, "recent links", s.Recent.Fetch(ctx))
	}

	page := dashboardPage{EmptyMessage: noLinksMessage}
	status := http.StatusOK

	state := s.Dashboard.Snapshot()
	switch state.Phase {
	case hooks.Idle, hooks.Loading:
		page.Loading = true
	case hooks.Failure:
		page.Err = state.Err
		status = http.StatusBadGateway
	case hooks.Success:
		stats := state.Data
		page.Cards = []StatCard{
			{Label: "Total links", Value: FormatCount(stats.TotalLinks), Growth: Growth(stats.LinksGrowth)},
			{Label: "Total clicks", Value: FormatCount(stats.TotalClicks), Growth: Growth(stats.ClicksGrowth)},
			{Label: "Clicks today", Value: FormatCount(stats.ClicksToday), Growth: Growth(stats.TodayGrowth)},
			{Label: "Unique visitors", Value: FormatCount(stats.UniqueVisitors), Growth: Growth(stats.VisitorsGrowth)},
		}
		page.Daily = NewLineChart(stats.DailyClicks)
		page.Hourly = NewBarChart(stats.HourlyClicks)
		page.TopLinks = h.cards(stats.TopLinks, dashboardReturn)
	}

	if recent := s.Recent.Snapshot(); recent.Phase == hooks.Success {
		page.Recent = h.cards(recent.Data, dashboardReturn)
	}

	page.basePage = h.base(ctx, s, "Dashboard", "dashboard")
	page.Refresh = page.Loading
	h.render(w, r, status, "dashboard.html", page)
}
