package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) (*chi.Mux, *string) {
	t.Helper()
	var auth string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			auth = req.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, req)
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL+"/api")
	t.Setenv("API_TOKEN", "")
	return r, &auth
}

func TestRun_Get(t *testing.T) {
	api, auth := fakeAPI(t)
	api.Get("/api/links/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":3,"shortCode":"abc123","originalUrl":"https://example.com"}`))
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-token", "t0k", "get", "3"}, &out))

	var link domain.Link
	require.NoError(t, json.Unmarshal(out.Bytes(), &link))
	assert.Equal(t, "abc123", link.ShortCode)
	assert.Equal(t, "Bearer t0k", *auth)
}

func TestRun_DeleteAndToggle(t *testing.T) {
	api, _ := fakeAPI(t)
	api.Delete("/api/links/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	api.Patch("/api/links/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"delete", "5"}, &out))
	require.NoError(t, run(context.Background(), []string{"toggle", "5"}, &out))
	assert.Equal(t, "deleted 5\ntoggled 5\n", out.String())
}

func TestRun_Bulk(t *testing.T) {
	api, _ := fakeAPI(t)
	var sent []domain.CreateLinkRequest
	api.Post("/api/links/bulk", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	})

	file := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(file, []byte("https://a.example\n\nhttps://b.example\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"bulk", "-file", file}, &out))
	require.Len(t, sent, 2)
	assert.Equal(t, "https://b.example", sent[1].OriginalURL)
}

func TestRun_QR(t *testing.T) {
	fakeAPI(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"qr", "9"}, &out))
	assert.Contains(t, out.String(), "/api/qr/9/download")
}

func TestRun_BackendErrorIsReturned(t *testing.T) {
	api, _ := fakeAPI(t)
	api.Get("/api/links/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not Found","message":"Link not found"}`))
	})

	err := run(context.Background(), []string{"get", "404"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestRun_Usage(t *testing.T) {
	fakeAPI(t)

	for _, args := range [][]string{nil, {"nope"}, {"get"}, {"shorten"}, {"search"}} {
		err := run(context.Background(), args, &bytes.Buffer{})
		assert.ErrorIs(t, err, errUsage, "%v", args)
	}

	err := run(context.Background(), []string{"get", "abc"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
