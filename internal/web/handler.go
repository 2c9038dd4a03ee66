package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
	"linkboard/internal/hooks"
	"linkboard/internal/service"
	"linkboard/internal/session"
	"linkboard/pkg/problemdetails"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	aliasAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	aliasLength    = 8
	aliasMinLength = 3
	aliasMaxLength = 20
)

// LinkDirectory is the part of the link service the pages call directly,
// outside of any hook.
type LinkDirectory interface {
	Get(ctx context.Context, cred apiclient.Credential, id int64) (*domain.Link, error)
	Search(ctx context.Context, cred apiclient.Credential, query string) ([]domain.Link, error)
	Top(ctx context.Context, cred apiclient.Credential, limit int) ([]domain.Link, error)
	BulkCreate(ctx context.Context, cred apiclient.Credential, reqs []domain.CreateLinkRequest) ([]domain.Link, error)
}

// Handler serves the pages. All per-browser state lives in the session.
type Handler struct {
	sessions *session.Manager
	links    LinkDirectory
	qr       *service.QRService
	origin   string
	views    *views
	logger   *zap.Logger
}

// NewHandler creates a new Handler. origin is the public origin short URLs
// are built on.
func NewHandler(sessions *session.Manager, links LinkDirectory, qr *service.QRService, origin string, logger *zap.Logger) (*Handler, error) {
	v, err := newViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		sessions: sessions,
		links:    links,
		qr:       qr,
		origin:   strings.TrimRight(origin, "/"),
		views:    v,
		logger:   logger,
	}, nil
}

// base fills the layout data. It drains the toast queue, so call it after
// the page's work is done.
func (h *Handler) base(ctx context.Context, s *session.Session, title, nav string) basePage {
	token := s.Credential.Token(ctx)
	return basePage{
		Title:    title,
		Nav:      nav,
		Subject:  tokenSubject(token),
		HasToken: token != "",
		Toasts:   s.Toasts.Drain(),
	}
}

// tokenSubject reads the sub claim of a JWT without verifying it. The backend
// verifies; the navbar only displays.
func tokenSubject(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.views.render(w, status, name, data); err != nil {
		h.logger.Error("failed to render page", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderError shows a full-page error
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, s *session.Session, status int, msg string) {
	page := errorPage{
		basePage: h.base(r.Context(), s, http.StatusText(status), ""),
		Status:   status,
		Message:  msg,
	}
	h.render(w, r, status, "error.html", page)
}

// report logs a backend failure and forwards unexpected ones to Sentry when
// the request carries a hub.
func (h *Handler) report(r *http.Request, op string, err error) {
	if err == nil || errors.Is(err, hooks.ErrSuperseded) {
		return
	}
	h.logger.Warn("backend call failed", zap.String("op", op), zap.Error(err))

	if errors.Is(err, apiclient.ErrUnauthorized) || errors.Is(err, apiclient.ErrNotFound) || errors.Is(err, context.Canceled) {
		return
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return
	}
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

func (h *Handler) card(l domain.Link) LinkCard {
	return LinkCard{
		Link:       l,
		Short:      l.ShortURLFor(h.origin),
		QRImage:    h.qr.ImageURL(l.ID),
		QRDownload: h.qr.DownloadURL(l.ID),
		TodayShare: Percent(l.TodayShare()),
	}
}

// cards prepares links for display on the page at next
func (h *Handler) cards(links []domain.Link, next string) []LinkCard {
	out := make([]LinkCard, 0, len(links))
	for _, l := range links {
		c := h.card(l)
		c.Next = next
		out = append(out, c)
	}
	return out
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	h.renderError(w, r, s, http.StatusNotFound, "Page not found: "+r.URL.Path)
}

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)

	page := homePage{}
	if id, err := strconv.ParseInt(r.URL.Query().Get("created"), 10, 64); err == nil {
		link, ok := s.Created(id)
		if !ok {
			if held, found := s.Links.Find(id); found {
				link, ok = &held, true
			}
		}
		if ok {
			card := h.card(*link)
			card.Short = link.DisplayShortURL(h.origin)
			page.Created = &card
		}
	}

	page.basePage = h.base(r.Context(), s, "Shorten a link", "home")
	h.render(w, r, http.StatusOK, "home.html", page)
}

// CreateLink handles POST /
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	form := parseLinkForm(r)

	if err := form.Validate(); err != nil {
		page := homePage{Form: form, Errors: fieldErrors(err)}
		page.basePage = h.base(r.Context(), s, "Shorten a link", "home")
		h.render(w, r, http.StatusUnprocessableEntity, "home.html", page)
		return
	}

	link, err := s.Links.Create(r.Context(), form.CreateRequest())
	if err != nil {
		h.report(r, "create link", err)
		page := homePage{Form: form, Errors: FieldErrors{"form": apiclient.Message(err)}}
		page.basePage = h.base(r.Context(), s, "Shorten a link", "home")
		h.render(w, r, http.StatusBadGateway, "home.html", page)
		return
	}

	s.Remember(link)
	redirect(w, r, "/?created="+strconv.FormatInt(link.ID, 10))
}

// GenerateAlias handles POST /alias with an optional length field
func (h *Handler) GenerateAlias(w http.ResponseWriter, r *http.Request) {
	length := aliasLength
	if raw := r.PostFormValue("length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			err = validation.Validate(n, validation.Min(aliasMinLength), validation.Max(aliasMaxLength))
		}
		if err != nil {
			writeProblem(w, problemdetails.NewValidation([]problemdetails.FieldError{
				{Field: "length", Message: "Length must be a number between 3 and 20"},
			}))
			return
		}
		length = n
	}

	alias, err := gonanoid.Generate(aliasAlphabet, length)
	if err != nil {
		h.logger.Error("failed to generate alias", zap.Error(err))
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Failed to generate alias",
		))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alias": alias})
}

// TokenForm handles GET /token
func (h *Handler) TokenForm(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	page := tokenPage{Masked: mask(s.Credential.Token(r.Context()))}
	page.basePage = h.base(r.Context(), s, "API token", "token")
	h.render(w, r, http.StatusOK, "token.html", page)
}

// SaveToken handles POST /token
func (h *Handler) SaveToken(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	token := strings.TrimSpace(r.PostFormValue("token"))
	token = strings.TrimPrefix(token, "Bearer ")

	if token == "" {
		page := tokenPage{Err: "Token is required"}
		page.basePage = h.base(r.Context(), s, "API token", "token")
		h.render(w, r, http.StatusUnprocessableEntity, "token.html", page)
		return
	}

	if err := h.sessions.Store().Set(r.Context(), s.ID, token); err != nil {
		h.logger.Error("failed to store token", zap.String("session", s.ID), zap.Error(err))
		page := tokenPage{Err: "Could not save the token, please try again"}
		page.basePage = h.base(r.Context(), s, "API token", "token")
		h.render(w, r, http.StatusInternalServerError, "token.html", page)
		return
	}

	s.Toasts.Success("Token saved")
	redirect(w, r, "/")
}

// ClearToken handles POST /token/clear
func (h *Handler) ClearToken(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Load(w, r)
	s.Credential.Clear(r.Context())
	s.Toasts.Success("Token cleared")
	redirect(w, r, "/token")
}

// mask keeps the first and last four characters of a token
func mask(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}
