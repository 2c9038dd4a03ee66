package hooks

import (
	"context"
	"sync"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
	"linkboard/internal/metrics"
	"linkboard/internal/notify"
	"linkboard/internal/service"

	"github.com/samber/lo"
)

// LinkAPI is the part of the link service the list hook drives
type LinkAPI interface {
	List(ctx context.Context, cred apiclient.Credential, params service.ListParams) (*domain.Page, error)
	Create(ctx context.Context, cred apiclient.Credential, req domain.CreateLinkRequest) (*domain.Link, error)
	Update(ctx context.Context, cred apiclient.Credential, id int64, req domain.UpdateLinkRequest) (*domain.Link, error)
	Delete(ctx context.Context, cred apiclient.Credential, id int64) error
	Toggle(ctx context.Context, cred apiclient.Credential, id int64) error
}

// LinksView is a consistent copy of the list hook's state
type LinksView struct {
	State[[]domain.Link]
	TotalPages    int
	TotalElements int64
	Page          int
	Size          int
}

// Items returns the held page of links
func (v LinksView) Items() []domain.Link { return v.Data }

// Links keeps one page of links and patches it in place after mutations, so a
// create, update, delete or toggle never triggers a re-fetch.
type Links struct {
	api      LinkAPI
	notifier notify.Notifier
	cred     apiclient.Credential

	mu            sync.Mutex
	page          int
	size          int
	state         State[[]domain.Link]
	totalPages    int
	totalElements int64
	gen           generation
	// phase and error a dropped fetch falls back to
	settledPhase Phase
	settledErr   string
	// page and size the held rows were fetched with
	heldPage int
	heldSize int
}

func NewLinks(api LinkAPI, notifier notify.Notifier, cred apiclient.Credential, page, size int) *Links {
	if page < 0 {
		page = service.DefaultPage
	}
	if size <= 0 {
		size = service.DefaultPageSize
	}
	return &Links{api: api, notifier: notifier, cred: cred, page: page, size: size}
}

// Load fetches the current page
func (h *Links) Load(ctx context.Context) error {
	return h.fetch(ctx)
}

// Refetch always fetches the current page again
func (h *Links) Refetch(ctx context.Context) error {
	return h.fetch(ctx)
}

// SetPage moves to another page or page size and fetches it. Nothing happens
// when both are unchanged.
func (h *Links) SetPage(ctx context.Context, page, size int) error {
	if page < 0 {
		page = service.DefaultPage
	}
	if size <= 0 {
		size = service.DefaultPageSize
	}

	h.mu.Lock()
	if page == h.page && size == h.size {
		h.mu.Unlock()
		return nil
	}
	h.page, h.size = page, size
	h.mu.Unlock()

	return h.fetch(ctx)
}

func (h *Links) fetch(ctx context.Context) error {
	h.mu.Lock()
	ctx, n := h.gen.begin(ctx)
	params := service.ListParams{Page: h.page, Size: h.size}
	if h.state.Phase != Loading {
		h.settledPhase, h.settledErr = h.state.Phase, h.state.Err
	}
	h.state.Phase = Loading
	h.state.Err = ""
	h.mu.Unlock()

	page, err := h.api.List(ctx, h.cred, params)

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.gen.finish(n) {
		metrics.StaleResponsesTotal.WithLabelValues("links").Inc()
		return ErrSuperseded
	}
	if err != nil {
		h.state.Phase = Failure
		h.state.Err = apiclient.Message(err)
		h.notifier.Error("Failed to fetch links")
		return err
	}

	h.state = State[[]domain.Link]{Phase: Success, Data: page.Content}
	if h.state.Data == nil {
		h.state.Data = []domain.Link{}
	}
	h.totalPages = page.TotalPages
	h.totalElements = page.TotalElements
	h.heldPage, h.heldSize = params.Page, params.Size
	return nil
}

// Snapshot returns a copy of the current state safe to render
func (h *Links) Snapshot() LinksView {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := h.state
	state.Data = append([]domain.Link(nil), h.state.Data...)
	return LinksView{
		State:         state,
		TotalPages:    h.totalPages,
		TotalElements: h.totalElements,
		Page:          h.page,
		Size:          h.size,
	}
}

// Find returns the held link with the given id
func (h *Links) Find(id int64) (domain.Link, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lo.Find(h.state.Data, func(l domain.Link) bool { return l.ID == id })
}

// issued returns the fetch generation a mutation is issued against
func (h *Links) issued() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen.current
}

// patch applies a successful mutation to the held page. A fetch issued before
// the mutation is dropped, since its page predates it. When a fetch was issued
// after the mutation, that fetch owns the page and the patch is skipped.
func (h *Links) patch(issued uint64, apply func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gen.current != issued {
		return
	}
	if h.gen.drop() {
		h.state.Phase, h.state.Err = h.settledPhase, h.settledErr
		if h.page != h.heldPage || h.size != h.heldSize {
			h.state.Phase, h.state.Err = Idle, ""
		}
	}
	apply()
}

// Create adds the new link to the front of the page and drops the last one
// when the page is full.
func (h *Links) Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.Link, error) {
	issued := h.issued()
	link, err := h.api.Create(ctx, h.cred, req)
	if err != nil {
		h.notifier.Error("Failed to create link")
		return nil, err
	}

	h.patch(issued, func() {
		items := append([]domain.Link{*link}, h.state.Data...)
		if len(items) > h.size {
			items = items[:h.size]
		}
		h.state.Data = items
		h.totalElements++
	})

	h.notifier.Success("Link created successfully!")
	return link, nil
}

// Update replaces the held link with the backend's updated copy
func (h *Links) Update(ctx context.Context, id int64, req domain.UpdateLinkRequest) (*domain.Link, error) {
	issued := h.issued()
	link, err := h.api.Update(ctx, h.cred, id, req)
	if err != nil {
		h.notifier.Error("Failed to update link")
		return nil, err
	}

	h.patch(issued, func() {
		h.state.Data = lo.Map(h.state.Data, func(l domain.Link, _ int) domain.Link {
			if l.ID == id {
				return *link
			}
			return l
		})
	})

	h.notifier.Success("Link updated successfully!")
	return link, nil
}

// Delete removes exactly the link with the given id
func (h *Links) Delete(ctx context.Context, id int64) error {
	issued := h.issued()
	if err := h.api.Delete(ctx, h.cred, id); err != nil {
		h.notifier.Error("Failed to delete link")
		return err
	}

	h.patch(issued, func() {
		h.state.Data = lo.Filter(h.state.Data, func(l domain.Link, _ int) bool { return l.ID != id })
		if h.totalElements > 0 {
			h.totalElements--
		}
	})

	h.notifier.Success("Link deleted successfully!")
	return nil
}

// Toggle flips IsActive on the matching link only
func (h *Links) Toggle(ctx context.Context, id int64) error {
	issued := h.issued()
	if err := h.api.Toggle(ctx, h.cred, id); err != nil {
		h.notifier.Error("Failed to update link status")
		return err
	}

	h.patch(issued, func() {
		h.state.Data = lo.Map(h.state.Data, func(l domain.Link, _ int) domain.Link {
			if l.ID == id {
				l.IsActive = !l.IsActive
			}
			return l
		})
	})

	h.notifier.Success("Link status updated!")
	return nil
}
