package hooks

import (
	"context"
	"sync"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
	"linkboard/internal/metrics"
	"linkboard/internal/notify"
)

// FetchFunc loads a single resource
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resource holds one fetched value, such as the dashboard statistics
type Resource[T any] struct {
	name     string
	fetch    FetchFunc[T]
	notifier notify.Notifier
	failMsg  string

	mu    sync.Mutex
	state State[T]
	gen   generation
}

// NewResource creates an idle resource hook. failMsg is the toast shown when a
// fetch fails; name labels metrics.
func NewResource[T any](name string, fetch FetchFunc[T], notifier notify.Notifier, failMsg string) *Resource[T] {
	return &Resource[T]{name: name, fetch: fetch, notifier: notifier, failMsg: failMsg}
}

// Fetch loads the resource, replacing whatever is held once it resolves
func (r *Resource[T]) Fetch(ctx context.Context) error {
	r.mu.Lock()
	ctx, n := r.gen.begin(ctx)
	r.state.Phase = Loading
	r.state.Err = ""
	r.mu.Unlock()

	data, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.gen.finish(n) {
		metrics.StaleResponsesTotal.WithLabelValues(r.name).Inc()
		return ErrSuperseded
	}
	if err != nil {
		r.state.Phase = Failure
		r.state.Err = apiclient.Message(err)
		if r.failMsg != "" {
			r.notifier.Error(r.failMsg)
		}
		return err
	}
	r.state = State[T]{Phase: Success, Data: data}
	return nil
}

// Refetch is Fetch, exposed under the name the views use for retry controls
func (r *Resource[T]) Refetch(ctx context.Context) error {
	return r.Fetch(ctx)
}

func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// StatsAPI is the part of the dashboard service the dashboard hook drives
type StatsAPI interface {
	Stats(ctx context.Context, cred apiclient.Credential) (*domain.DashboardStats, error)
}

// NewDashboard returns a resource hook over the dashboard statistics
func NewDashboard(api StatsAPI, notifier notify.Notifier, cred apiclient.Credential) *Resource[*domain.DashboardStats] {
	fetch := func(ctx context.Context) (*domain.DashboardStats, error) {
		return api.Stats(ctx, cred)
	}
	return NewResource("dashboard", fetch, notifier, "Failed to load dashboard statistics")
}

// RecentAPI lists recently created links
type RecentAPI interface {
	Recent(ctx context.Context, cred apiclient.Credential, days int) ([]domain.Link, error)
}

// NewRecent returns a resource hook over the links created in the last days
func NewRecent(api RecentAPI, notifier notify.Notifier, cred apiclient.Credential, days int) *Resource[[]domain.Link] {
	fetch := func(ctx context.Context) ([]domain.Link, error) {
		return api.Recent(ctx, cred, days)
	}
	return NewResource("recent", fetch, notifier, "")
}
