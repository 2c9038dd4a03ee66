package service

import (
	"fmt"
	"strings"
)

// QRService builds QR image URLs. The images are fetched by the browser
// directly, never decoded here.
type QRService struct {
	baseURL string
}

func NewQRService(baseURL string) *QRService {
	return &QRService{baseURL: strings.TrimRight(baseURL, "/")}
}

// ImageURL is the inline QR code image for a link.
func (s *QRService) ImageURL(linkID int64) string {
	return fmt.Sprintf("%s/qr/%d", s.baseURL, linkID)
}

// DownloadURL serves the same image as an attachment.
func (s *QRService) DownloadURL(linkID int64) string {
	return fmt.Sprintf("%s/qr/%d/download", s.baseURL, linkID)
}
