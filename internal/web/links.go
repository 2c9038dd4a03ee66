package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"linkboard/internal/apiclient"
	"linkboard/internal/session"
)

func editPath(id int64) string {
	return "/links/" + strconv.FormatInt(id, 10) + "/edit"
}

// EditForm handles GET /links/{id}/edit
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		h.renderError(w, r, s, http.StatusBadRequest, "Invalid link id")
		return
	}

	link, ok := s.Links.Find(id)
	if !ok {
		fetched, err := h.links.Get(ctx, s.Credential, id)
		if err != nil {
			h.report(r, "get link", err)
			status := http.StatusBadGateway
			if errors.Is(err, apiclient.ErrNotFound) {
				status = http.StatusNotFound
			}
			h.renderError(w, r, s, status, apiclient.Message(err))
			return
		}
		link = *fetched
	}

	page := editPage{ID: id, Form: formFromLink(link)}
	page.basePage = h.base(ctx, s, "Edit link", "analytics")
	h.render(w, r, http.StatusOK, "edit.html", page)
}

// UpdateLink handles POST /links/{id}/edit
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		h.renderError(w, r, s, http.StatusBadRequest, "Invalid link id")
		return
	}

	form := parseLinkForm(r)
	if err := form.Validate(); err != nil {
		page := editPage{ID: id, Form: form, Errors: fieldErrors(err)}
		page.basePage = h.base(ctx, s, "Edit link", "analytics")
		h.render(w, r, http.StatusUnprocessableEntity, "edit.html", page)
		return
	}

	if _, err := s.Links.Update(ctx, id, form.UpdateRequest()); err != nil {
		h.report(r, "update link", err)
		page := editPage{ID: id, Form: form, Errors: FieldErrors{"form": apiclient.Message(err)}}
		page.basePage = h.base(ctx, s, "Edit link", "analytics")
		h.render(w, r, http.StatusBadGateway, "edit.html", page)
		return
	}

	redirect(w, r, "/analytics")
}

// ToggleLink handles POST /links/{id}/toggle
func (h *Handler) ToggleLink(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "toggle link", func(s *session.Session, id int64) error {
		return s.Links.Toggle(r.Context(), id)
	})
}

// DeleteLink handles POST /links/{id}/delete
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "delete link", func(s *session.Session, id int64) error {
		return s.Links.Delete(r.Context(), id)
	})
}

// mutate runs a card action and returns to the page it came from. The hook
// has already queued the success or failure toast.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(*session.Session, int64) error) {
	s := h.sessions.Load(w, r)

	id, err := parseID(r)
	if err != nil {
		h.renderError(w, r, s, http.StatusBadRequest, "Invalid link id")
		return
	}

	h.report(r, op, fn(s, id))
	redirect(w, r, safeNext(r.PostFormValue("next"), "/analytics"))
}

// BulkCreate handles POST /links/bulk, one URL per line
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	ctx := r.Context()
	text := r.PostFormValue("urls")

	reqs, lines, ok := parseBulk(text)
	if !ok {
		page := homePage{Bulk: text, BulkLines: lines}
		if len(lines) == 0 {
			page.BulkError = "Enter at least one URL"
		} else {
			page.BulkError = "Some URLs are invalid"
		}
		page.basePage = h.base(ctx, s, "Shorten a link", "home")
		h.render(w, r, http.StatusUnprocessableEntity, "home.html", page)
		return
	}

	created, err := h.links.BulkCreate(ctx, s.Credential, reqs)
	if err != nil {
		h.report(r, "bulk create", err)
		s.Toasts.Error("Failed to import links")
		page := homePage{Bulk: text, BulkError: apiclient.Message(err)}
		page.basePage = h.base(ctx, s, "Shorten a link", "home")
		h.render(w, r, http.StatusBadGateway, "home.html", page)
		return
	}

	s.Toasts.Success(fmt.Sprintf("%d links created", len(created)))
	// The held page no longer matches the backend.
	h.report(r, "list links", s.Links.Refetch(ctx))
	redirect(w, r, "/analytics")
}
