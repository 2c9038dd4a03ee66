package service

import (
	"context"

	"linkboard/internal/apiclient"
	"linkboard/internal/domain"
)

type DashboardService struct {
	client *apiclient.Client
}

func NewDashboardService(client *apiclient.Client) *DashboardService {
	return &DashboardService{client: client}
}

// Stats handles GET /dashboard/stats
func (s *DashboardService) Stats(ctx context.Context, cred apiclient.Credential) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := s.client.Get(ctx, cred, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
