package domain

import "strings"

// Link is the backend's view of a shortened URL. The frontend only caches the
// subset it is currently displaying.
type Link struct {
	ID                int64      `json:"id"`
	OriginalURL       string     `json:"originalUrl"`
	ShortCode         string     `json:"shortCode"`
	CustomAlias       string     `json:"customAlias,omitempty"`
	ShortURL          string     `json:"shortUrl,omitempty"`
	Title             string     `json:"title,omitempty"`
	Description       string     `json:"description,omitempty"`
	ClickCount        int64      `json:"clickCount"`
	UniqueVisitors    int64      `json:"uniqueVisitors"`
	TodayClicks       int64      `json:"todayClicks"`
	IsActive          bool       `json:"isActive"`
	ExpiresAt         *Timestamp `json:"expiresAt,omitempty"`
	PasswordProtected bool       `json:"passwordProtected"`
	QRCodeURL         string     `json:"qrCodeUrl,omitempty"`
	CreatedAt         Timestamp  `json:"createdAt"`
	UpdatedAt         *Timestamp `json:"updatedAt,omitempty"`
}

// ShortURLFor derives the public short URL from origin and the short code.
// It is recomputed on every render and never stored.
func (l Link) ShortURLFor(origin string) string {
	return strings.TrimRight(origin, "/") + "/" + l.ShortCode
}

// DisplayShortURL prefers the URL the backend returned and falls back to the
// derived one.
func (l Link) DisplayShortURL(origin string) string {
	if l.ShortURL != "" {
		return l.ShortURL
	}
	return l.ShortURLFor(origin)
}

// TodayShare is today's clicks as a percentage of all clicks, 0 when the link
// has never been clicked.
func (l Link) TodayShare() float64 {
	if l.ClickCount <= 0 {
		return 0
	}
	return float64(l.TodayClicks) / float64(l.ClickCount) * 100
}

// CreateLinkRequest is the payload for POST /links and each entry of POST /links/bulk.
type CreateLinkRequest struct {
	OriginalURL string     `json:"originalUrl"`
	CustomAlias string     `json:"customAlias,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *Timestamp `json:"expiresAt,omitempty"`
}

// UpdateLinkRequest is the payload for PUT /links/{id}.
type UpdateLinkRequest struct {
	OriginalURL string     `json:"originalUrl,omitempty"`
	CustomAlias string     `json:"customAlias,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *Timestamp `json:"expiresAt,omitempty"`
}

// Page is one page of the backend's link collection.
type Page struct {
	Content       []Link `json:"content"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
	Number        int    `json:"number"`
	Size          int    `json:"size"`
}
