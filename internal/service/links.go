package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
)

const (
	DefaultPage          = 0
	DefaultPageSize      = 10
	DefaultSortBy        = "createdAt"
	DefaultSortDir       = "desc"
	DefaultTopLimit      = 5
	DefaultRecentDays    = 7
	DefaultAnalyticsDays = 30
)

// ListParams selects one page of links. Zero values take the defaults.
type ListParams struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

func (p ListParams) withDefaults() ListParams {
	if p.Page < 0 {
		p.Page = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.SortDir == "" {
		p.SortDir = DefaultSortDir
	}
	return p
}

// LinkService maps one-to-one onto the backend's /links endpoints. It does no
// validation and returns backend errors unchanged.
type LinkService struct {
	client *apiclient.Client
}

func NewLinkService(client *apiclient.Client) *LinkService {
	return &LinkService{client: client}
}

// Create handles POST /links
func (s *LinkService) Create(ctx context.Context, cred apiclient.Credential, req domain.CreateLinkRequest) (*domain.Link, error) {
	var link domain.Link
	if err := s.client.Post(ctx, cred, "/links", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// List handles GET /links?page&size&sortBy&sortDir
func (s *LinkService) List(ctx context.Context, cred apiclient.Credential, params ListParams) (*domain.Page, error) {
	params = params.withDefaults()
	query := url.Values{
		"page":    {strconv.Itoa(params.Page)},
		"size":    {strconv.Itoa(params.Size)},
		"sortBy":  {params.SortBy},
		"sortDir": {params.SortDir},
	}

	var page domain.Page
	if err := s.client.Get(ctx, cred, "/links", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get handles GET /links/{id}
func (s *LinkService) Get(ctx context.Context, cred apiclient.Credential, id int64) (*domain.Link, error) {
	var link domain.Link
	if err := s.client.Get(ctx, cred, linkPath(id), nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Update handles PUT /links/{id}
func (s *LinkService) Update(ctx context.Context, cred apiclient.Credential, id int64, req domain.UpdateLinkRequest) (*domain.Link, error) {
	var link domain.Link
	if err := s.client.Put(ctx, cred, linkPath(id), req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Delete handles DELETE /links/{id}
func (s *LinkService) Delete(ctx context.Context, cred apiclient.Credential, id int64) error {
	return s.client.Delete(ctx, cred, linkPath(id))
}

// Toggle handles PATCH /links/{id}/toggle
func (s *LinkService) Toggle(ctx context.Context, cred apiclient.Credential, id int64) error {
	return s.client.Patch(ctx, cred, linkPath(id)+"/toggle", nil, nil)
}

// Search handles GET /links/search?q=
func (s *LinkService) Search(ctx context.Context, cred apiclient.Credential, query string) ([]domain.Link, error) {
	var links []domain.Link
	if err := s.client.Get(ctx, cred, "/links/search", url.Values{"q": {query}}, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Top handles GET /links/top?limit=
func (s *LinkService) Top(ctx context.Context, cred apiclient.Credential, limit int) ([]domain.Link, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	var links []domain.Link
	if err := s.client.Get(ctx, cred, "/links/top", url.Values{"limit": {strconv.Itoa(limit)}}, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Recent handles GET /links/recent?days=
func (s *LinkService) Recent(ctx context.Context, cred apiclient.Credential, days int) ([]domain.Link, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	var links []domain.Link
	if err := s.client.Get(ctx, cred, "/links/recent", url.Values{"days": {strconv.Itoa(days)}}, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Analytics handles GET /links/{id}/analytics?days=
func (s *LinkService) Analytics(ctx context.Context, cred apiclient.Credential, id int64, days int) (*domain.LinkAnalytics, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	var analytics domain.LinkAnalytics
	query := url.Values{"days": {strconv.Itoa(days)}}
	if err := s.client.Get(ctx, cred, linkPath(id)+"/analytics", query, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// BulkCreate handles POST /links/bulk
func (s *LinkService) BulkCreate(ctx context.Context, cred apiclient.Credential, reqs []domain.CreateLinkRequest) ([]domain.Link, error) {
	var links []domain.Link
	if err := s.client.Post(ctx, cred, "/links/bulk", reqs, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func linkPath(id int64) string {
	return fmt.Sprintf("/links/%d", id)
}
