package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

const (
	dashboardRecentVotes     = 10
	dashboardRecentUsers     = 5
	dashboardRecentElections = 5
	dashboardTopDepartments  = 5
)

// ===== RESPONSE DTOs =====

type DashboardResponse struct {
	Overview       repositories.DashboardTotals       `json:"overview"`
	ElectionStats  []repositories.ElectionStatsData   `json:"election_stats"`
	RecentVotes    []repositories.RecentVoteData      `json:"recent_votes"`
	RecentUsers    []repositories.RecentUserData      `json:"recent_users"`
	TopDepartments []repositories.DepartmentStatsData `json:"top_departments"`
	GeneratedAt    time.Time                          `json:"generated_at"`
}

// ===== SERVICE INTERFACE =====

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

// ===== SERVICE IMPLEMENTATION =====

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	var dashboard DashboardResponse
	err := s.repo.Cache().Stats.CacheOrExecute(ctx, cache.DashboardKey, &dashboard, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *dashboardService) buildDashboard(ctx context.Context) (*DashboardResponse, error) {
	s.logger.Info("Building dashboard")

	totals, err := s.repo.Dashboard().GetTotals(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	electionStats, err := s.repo.Dashboard().GetElectionStats(ctx, nil, dashboardRecentElections)
	if err != nil {
		return nil, fmt.Errorf("failed to get election stats: %w", err)
	}

	recentVotes, err := s.repo.Dashboard().GetRecentVotes(ctx, nil, dashboardRecentVotes)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent votes: %w", err)
	}

	recentUsers, err := s.repo.Dashboard().GetRecentUsers(ctx, nil, dashboardRecentUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent users: %w", err)
	}

	departments, err := s.repo.Dashboard().GetTopDepartments(ctx, nil, dashboardTopDepartments)
	if err != nil {
		return nil, fmt.Errorf("failed to get top departments: %w", err)
	}

	return &DashboardResponse{
		Overview:       *totals,
		ElectionStats:  electionStats,
		RecentVotes:    recentVotes,
		RecentUsers:    recentUsers,
		TopDepartments: departments,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
