package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"linkboard/internal/apiclient"
	"linkboard/internal/service"
	"linkboard/internal/session"
	"linkboard/internal/web"
	"linkboard/pkg/problemdetails"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const origin = "http://localhost:3001"

// harness drives the full router against a fake backend, holding one
// browser's session cookie across requests.
type harness struct {
	api      *chi.Mux
	router   http.Handler
	sessions *session.Manager
	cookie   *http.Cookie
}

func newHarness(t *testing.T, requestsPerMinute int) *harness {
	t.Helper()

	api := chi.NewRouter()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client, err := apiclient.New(srv.URL+"/api", logger)
	require.NoError(t, err)

	links := service.NewLinkService(client)
	stats := service.NewDashboardService(client)
	sessions := session.NewManager(session.NewMemoryStore(time.Hour), links, stats, session.Options{}, logger)
	t.Cleanup(sessions.Stop)

	handler, err := web.NewHandler(sessions, links, service.NewQRService(srv.URL+"/api"), origin, logger)
	require.NoError(t, err)

	rl := web.NewRateLimiter(requestsPerMinute)
	t.Cleanup(rl.Stop)

	return &harness{
		api:      api,
		router:   web.NewRouter(handler, logger, rl, web.RouterOptions{}),
		sessions: sessions,
	}
}

func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "192.168.1.1:12345"
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}

	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			h.cookie = c
		}
	}
	return rr
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	require.NotNil(t, h.cookie)
	token, err := h.sessions.Store().Get(context.Background(), h.cookie.Value)
	require.NoError(t, err)
	return token
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func counted(n *atomic.Int32, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		next(w, r)
	}
}

const twoLinksPage = `{"content":[
	{"id":1,"shortCode":"a1","originalUrl":"https://one.example","title":"Zero","clickCount":0,"isActive":true},
	{"id":2,"shortCode":"b2","originalUrl":"https://two.example","title":"Five","clickCount":5,"isActive":true}
],"totalPages":1,"totalElements":2,"number":0,"size":10}`

func TestHome_CreateLink_ShowsShortURLWithCopyButton(t *testing.T) {
	h := newHarness(t, 100)

	var sent map[string]any
	h.api.Post("/api/links", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		respond(http.StatusCreated, `{"id":1,"shortCode":"abc123","originalUrl":"https://example.com","clickCount":0}`)(w, r)
	})

	rr := h.do(http.MethodPost, "/", url.Values{"originalUrl": {"https://example.com"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?created=1", rr.Header().Get("Location"))
	assert.Equal(t, "https://example.com", sent["originalUrl"])

	rr = h.do(http.MethodGet, "/?created=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "http://localhost:3001/abc123")
	assert.Contains(t, body, "data-copy")
	assert.Contains(t, body, "Link created successfully!")

	// The toast is shown once.
	rr = h.do(http.MethodGet, "/", nil)
	assert.NotContains(t, rr.Body.String(), "Link created successfully!")
}

func TestHome_CreateLink_InvalidURLNeverReachesBackend(t *testing.T) {
	h := newHarness(t, 100)

	var calls atomic.Int32
	h.api.Post("/api/links", counted(&calls, respond(http.StatusCreated, `{}`)))

	for _, raw := range []string{"", "example.com", "ftp://example.com"} {
		rr := h.do(http.MethodPost, "/", url.Values{"originalUrl": {raw}})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, raw)
	}
	assert.Zero(t, calls.Load())

	rr := h.do(http.MethodPost, "/", url.Values{"originalUrl": {""}})
	assert.Contains(t, rr.Body.String(), "URL is required")
}

func TestHome_CreateLink_BackendErrorShownInForm(t *testing.T) {
	h := newHarness(t, 100)
	h.api.Post("/api/links", respond(http.StatusConflict, `{"error":"Conflict","message":"Alias already taken"}`))

	rr := h.do(http.MethodPost, "/", url.Values{"originalUrl": {"https://example.com"}, "customAlias": {"taken"}})

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "Alias already taken")
	assert.Contains(t, rr.Body.String(), "Failed to create link")
}

func TestDashboard_RendersStats(t *testing.T) {
	h := newHarness(t, 100)
	var statsCalls atomic.Int32
	h.api.Get("/api/dashboard/stats", counted(&statsCalls, respond(http.StatusOK,
		`{"totalLinks":42,"totalClicks":1337,"clicksToday":25,"uniqueVisitors":89,"dailyClicks":[],"hourlyClicks":[],"topLinks":[]}`)))
	h.api.Get("/api/links/recent", respond(http.StatusOK, `[]`))

	rr := h.do(http.MethodGet, "/dashboard", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, want := range []string{"42", "1,337", "25", "89", "No links found. Create your first link from the home page!"} {
		assert.Contains(t, body, want)
	}

	// A second visit renders the held snapshot; refresh asks again.
	h.do(http.MethodGet, "/dashboard", nil)
	assert.EqualValues(t, 1, statsCalls.Load())
	h.do(http.MethodGet, "/dashboard?refresh=1", nil)
	assert.EqualValues(t, 2, statsCalls.Load())
}

func TestDashboard_CardActionReturnsAndRefetches(t *testing.T) {
	h := newHarness(t, 100)
	var statsCalls atomic.Int32
	h.api.Get("/api/dashboard/stats", counted(&statsCalls, respond(http.StatusOK,
		`{"totalLinks":1,"totalClicks":3,"dailyClicks":[],"hourlyClicks":[],
		"topLinks":[{"id":1,"shortCode":"a1","originalUrl":"https://one.example","clickCount":3,"isActive":true}]}`)))
	h.api.Get("/api/links/recent", respond(http.StatusOK, `[]`))
	h.api.Patch("/api/links/1/toggle", respond(http.StatusOK, ``))

	rr := h.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<input type="hidden" name="next" value="/dashboard?refresh=1">`)

	rr = h.do(http.MethodPost, "/links/1/toggle", url.Values{"next": {"/dashboard?refresh=1"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard?refresh=1", rr.Header().Get("Location"))

	h.do(http.MethodGet, "/dashboard?refresh=1", nil)
	assert.EqualValues(t, 2, statsCalls.Load())
}

func TestSearch_CardsReturnToResults(t *testing.T) {
	h := newHarness(t, 100)
	h.api.Get("/api/links/search", respond(http.StatusOK,
		`[{"id":1,"shortCode":"a1","originalUrl":"https://one.example","isActive":true}]`))

	rr := h.do(http.MethodGet, "/search?q=one", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<input type="hidden" name="next" value="/search?q=one">`)
}

func TestDashboard_BackendFailureShowsErrorBlock(t *testing.T) {
	h := newHarness(t, 100)
	h.api.Get("/api/dashboard/stats", respond(http.StatusInternalServerError, `{"error":"Internal Server Error","message":"boom"}`))
	h.api.Get("/api/links/recent", respond(http.StatusOK, `[]`))

	rr := h.do(http.MethodGet, "/dashboard", nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Error loading dashboard")
	assert.Contains(t, body, "Details:")
	assert.Contains(t, body, "Failed to load dashboard statistics")
	assert.Contains(t, body, "/dashboard?refresh=1")
}

func TestAnalytics_FilterRunsOnHeldPage(t *testing.T) {
	h := newHarness(t, 100)
	var listCalls atomic.Int32
	h.api.Get("/api/links", counted(&listCalls, respond(http.StatusOK, twoLinksPage)))

	rr := h.do(http.MethodGet, "/analytics?filter=inactive", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="link-1"`)
	assert.NotContains(t, body, `id="link-2"`)

	rr = h.do(http.MethodGet, "/analytics?filter=active", nil)
	assert.Contains(t, rr.Body.String(), `id="link-2"`)
	assert.NotContains(t, rr.Body.String(), `id="link-1"`)

	assert.EqualValues(t, 1, listCalls.Load())
}

func TestAnalytics_ToggleAndDeletePatchHeldPage(t *testing.T) {
	h := newHarness(t, 100)
	var listCalls atomic.Int32
	h.api.Get("/api/links", counted(&listCalls, respond(http.StatusOK, twoLinksPage)))
	h.api.Patch("/api/links/1/toggle", respond(http.StatusOK, ``))
	h.api.Delete("/api/links/2", respond(http.StatusNoContent, ``))

	h.do(http.MethodGet, "/analytics", nil)

	rr := h.do(http.MethodPost, "/links/1/toggle", url.Values{"next": {"/analytics?sort=clicks"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/analytics?sort=clicks", rr.Header().Get("Location"))

	rr = h.do(http.MethodPost, "/links/2/delete", url.Values{"next": {"//evil.example"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/analytics", rr.Header().Get("Location"))

	rr = h.do(http.MethodGet, "/analytics", nil)
	body := rr.Body.String()
	assert.Contains(t, body, "badge-off")
	assert.NotContains(t, body, `id="link-2"`)
	assert.Contains(t, body, "Link deleted successfully!")
	assert.EqualValues(t, 1, listCalls.Load())
}

func TestLinkAnalytics_RendersBreakdowns(t *testing.T) {
	h := newHarness(t, 100)
	var days atomic.Value
	h.api.Get("/api/links/{id}/analytics", func(w http.ResponseWriter, r *http.Request) {
		days.Store(r.URL.Query().Get("days"))
		respond(http.StatusOK, `{"linkId":3,"shortCode":"xyz","originalUrl":"https://three.example","totalClicks":1200,
			"uniqueClicks":800,"dailyClicks":[{"date":"2024-03-01","clicks":3}],"hourlyClicks":[{"hour":9,"clicks":2}],
			"clicksByCountry":[{"countryCode":"VN","countryName":"Vietnam","clicks":7}],"clicksByBrowser":[{"browser":"Firefox","clicks":4}]}`)(w, r)
	})

	rr := h.do(http.MethodGet, "/analytics/3?days=7", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Equal(t, "7", days.Load())
	assert.Contains(t, body, "http://localhost:3001/xyz")
	assert.Contains(t, body, "1,200")
	assert.Contains(t, body, "Vietnam")
	assert.Contains(t, body, "Firefox")
	assert.Contains(t, body, "9h")
}

func TestEditForm_UnknownLinkIs404(t *testing.T) {
	h := newHarness(t, 100)
	h.api.Get("/api/links/7", respond(http.StatusNotFound, `{"error":"Not Found","message":"Link not found"}`))

	rr := h.do(http.MethodGet, "/links/7/edit", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(http.MethodGet, "/links/abc/edit", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateLink(t *testing.T) {
	h := newHarness(t, 100)
	var sent map[string]any
	h.api.Put("/api/links/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		respond(http.StatusOK, `{"id":1,"shortCode":"a1","originalUrl":"https://new.example","title":"Renamed"}`)(w, r)
	})

	rr := h.do(http.MethodPost, "/links/1/edit", url.Values{"originalUrl": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Nil(t, sent)

	rr = h.do(http.MethodPost, "/links/1/edit", url.Values{"originalUrl": {"https://new.example"}, "title": {"Renamed"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/analytics", rr.Header().Get("Location"))
	assert.Equal(t, "Renamed", sent["title"])
}

func TestBulkCreate(t *testing.T) {
	h := newHarness(t, 100)
	var sent []map[string]any
	h.api.Post("/api/links/bulk", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		respond(http.StatusCreated, `[{"id":1,"shortCode":"a1"},{"id":2,"shortCode":"b2"}]`)(w, r)
	})
	h.api.Get("/api/links", respond(http.StatusOK, twoLinksPage))

	rr := h.do(http.MethodPost, "/links/bulk", url.Values{"urls": {"https://one.example\nnot-a-url"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Some URLs are invalid")
	assert.Nil(t, sent)

	rr = h.do(http.MethodPost, "/links/bulk", url.Values{"urls": {"https://one.example\n\nhttps://two.example\n"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Len(t, sent, 2)

	rr = h.do(http.MethodGet, "/analytics", nil)
	assert.Contains(t, rr.Body.String(), "2 links created")
}

func TestSearch(t *testing.T) {
	h := newHarness(t, 100)
	h.api.Get("/api/links/top", respond(http.StatusOK, `[{"id":9,"shortCode":"top9","title":"Popular","clickCount":99}]`))
	h.api.Get("/api/links/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "docs" {
			respond(http.StatusOK, `[{"id":4,"shortCode":"d4","title":"Docs"}]`)(w, r)
			return
		}
		respond(http.StatusOK, `[]`)(w, r)
	})

	rr := h.do(http.MethodGet, "/search", nil)
	assert.Contains(t, rr.Body.String(), "Top links")
	assert.Contains(t, rr.Body.String(), "Popular")

	rr = h.do(http.MethodGet, "/search?q=docs", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="link-4"`)
}

func TestToken_SaveForwardAndClearOn401(t *testing.T) {
	h := newHarness(t, 100)
	var auth atomic.Value
	h.api.Get("/api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		respond(http.StatusUnauthorized, `{"error":"Unauthorized","message":"Token expired"}`)(w, r)
	})
	h.api.Get("/api/links/recent", respond(http.StatusOK, `[]`))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice@example.com"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	rr := h.do(http.MethodPost, "/token", url.Values{"token": {"Bearer " + token}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, token, h.token(t))

	rr = h.do(http.MethodGet, "/token", nil)
	assert.Contains(t, rr.Body.String(), "Signed in as alice@example.com")

	h.do(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, "Bearer "+token, auth.Load())
	assert.Empty(t, h.token(t))

	rr = h.do(http.MethodGet, "/token", nil)
	assert.Contains(t, rr.Body.String(), "No token")
}

func TestToken_EmptyAndClear(t *testing.T) {
	h := newHarness(t, 100)

	rr := h.do(http.MethodPost, "/token", url.Values{"token": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Token is required")

	h.do(http.MethodPost, "/token", url.Values{"token": {"opaque-token"}})
	assert.Equal(t, "opaque-token", h.token(t))

	rr = h.do(http.MethodPost, "/token/clear", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/token", rr.Header().Get("Location"))
	assert.Empty(t, h.token(t))
}

func TestGenerateAlias(t *testing.T) {
	h := newHarness(t, 100)

	rr := h.do(http.MethodPost, "/alias", url.Values{})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp["alias"], 8)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, resp["alias"])
}

func TestGenerateAlias_Length(t *testing.T) {
	h := newHarness(t, 100)

	rr := h.do(http.MethodPost, "/alias", url.Values{"length": {"12"}})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp["alias"], 12)

	for _, bad := range []string{"2", "21", "ten"} {
		rr = h.do(http.MethodPost, "/alias", url.Values{"length": {bad}})
		require.Equal(t, http.StatusBadRequest, rr.Code, bad)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
		var problem problemdetails.ProblemDetail
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&problem))
		assert.Equal(t, "https://linkboard.dev/problems/validation-error", problem.Type)
		require.Len(t, problem.Errors, 1)
		assert.Equal(t, "length", problem.Errors[0].Field)
	}
}

func TestFormSubmission_MalformedBody_Returns400(t *testing.T) {
	h := newHarness(t, 100)
	var calls atomic.Int32
	h.api.Post("/api/links", counted(&calls, respond(http.StatusCreated, `{"id":1}`)))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("originalUrl=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "invalid-request")
	assert.Zero(t, calls.Load())
}

func TestHealthAndNotFound(t *testing.T) {
	h := newHarness(t, 100)

	rr := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	rr = h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page not found")
}

func TestNewRouter_PagesBypassRateLimit(t *testing.T) {
	h := newHarness(t, 1)

	rr := h.do(http.MethodPost, "/alias", url.Values{})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(http.MethodPost, "/alias", url.Values{})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code, "form submissions should be rate limited")

	rr = h.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "health check should bypass rate limiter")

	rr = h.do(http.MethodGet, "/token", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "pages should bypass rate limiter")
}
