package hooks

import (
	"context"
	"sync"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
	"linkboard/internal/notify"
	"linkboard/internal/service"
)

// AnalyticsAPI is the part of the link service the analytics hook drives
type AnalyticsAPI interface {
	Analytics(ctx context.Context, cred apiclient.Credential, id int64, days int) (*domain.LinkAnalytics, error)
}

// LinkAnalytics holds the analytics of one link over a window of days. While
// the link id is zero it stays idle and never calls the backend.
type LinkAnalytics struct {
	mu   sync.Mutex
	id   int64
	days int

	res *Resource[*domain.LinkAnalytics]
}

func NewLinkAnalytics(api AnalyticsAPI, notifier notify.Notifier, cred apiclient.Credential, id int64, days int) *LinkAnalytics {
	if days <= 0 {
		days = service.DefaultAnalyticsDays
	}
	h := &LinkAnalytics{id: id, days: days}
	h.res = NewResource("analytics", func(ctx context.Context) (*domain.LinkAnalytics, error) {
		id, days := h.Params()
		return api.Analytics(ctx, cred, id, days)
	}, notifier, "Failed to fetch analytics")
	return h
}

// Params returns the link id and day window currently selected
func (h *LinkAnalytics) Params() (int64, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id, h.days
}

// Fetch loads the analytics for the selected link
func (h *LinkAnalytics) Fetch(ctx context.Context) error {
	if id, _ := h.Params(); id == 0 {
		return nil
	}
	return h.res.Fetch(ctx)
}

// SetParams selects another link or window and fetches it. Nothing happens
// when both are unchanged.
func (h *LinkAnalytics) SetParams(ctx context.Context, id int64, days int) error {
	if days <= 0 {
		days = service.DefaultAnalyticsDays
	}

	h.mu.Lock()
	if id == h.id && days == h.days {
		h.mu.Unlock()
		return nil
	}
	h.id, h.days = id, days
	h.mu.Unlock()

	return h.Fetch(ctx)
}

func (h *LinkAnalytics) Snapshot() State[*domain.LinkAnalytics] {
	return h.res.Snapshot()
}
