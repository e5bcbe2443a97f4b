package services

import (
	"context"
	"fmt"

	"malonda/internal/gateway"
	"malonda/internal/models"
	"malonda/internal/session"
)

// DashboardService fetches the manager dashboard aggregates.
type DashboardService struct {
	api      gateway.API
	sessions *session.Store
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(api gateway.API, sessions *session.Store) *DashboardService {
	return &DashboardService{api: api, sessions: sessions}
}

// Stats returns sales totals, chart series, recent orders and top products.
// The role is checked locally before dispatch; the backend enforces it too.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	user := s.sessions.CurrentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if !user.IsManager() {
		return nil, ErrManagerOnly
	}

	var stats models.DashboardStats
	if err := s.api.Get(ctx, "/manager-dashboard/", &stats); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return &stats, nil
}
