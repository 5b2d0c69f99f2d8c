package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) GetTotals(ctx context.Context, tx *gorm.DB) (*repositories.DashboardTotals, error) {
	db := r.getDB(tx).WithContext(ctx)
	totals := &repositories.DashboardTotals{}

	counts := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"users", db.Model(&models.User{}), &totals.TotalUsers},
		{"profiles", db.Model(&models.UserProfile{}), &totals.TotalProfiles},
		{"elections", db.Model(&models.Election{}), &totals.TotalElections},
		{"active elections", db.Model(&models.Election{}).Where("status = ?", models.ElectionActive), &totals.ActiveElections},
		{"votes", db.Model(&models.Vote{}), &totals.TotalVotes},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}

	return totals, nil
}

func (r *dashboardRepository) GetElectionStats(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.ElectionStatsData, error) {
	db := r.getDB(tx).WithContext(ctx)

	var stats []repositories.ElectionStatsData
	if err := db.Model(&models.Election{}).
		Select(`elections.id AS election_id, elections.title, elections.status, elections.created_at,
			(SELECT COUNT(*) FROM positions WHERE positions.election_id = elections.id) AS position_count,
			(SELECT COUNT(*) FROM candidates JOIN positions ON positions.id = candidates.position_id WHERE positions.election_id = elections.id) AS candidate_count,
			(SELECT COUNT(*) FROM votes JOIN positions ON positions.id = votes.position_id WHERE positions.election_id = elections.id) AS vote_count`).
		Order("elections.created_at DESC").
		Order("elections.id DESC").
		Limit(limit).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to get election stats: %w", err)
	}

	return stats, nil
}

func (r *dashboardRepository) GetRecentVotes(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentVoteData, error) {
	db := r.getDB(tx).WithContext(ctx)

	var votes []repositories.RecentVoteData
	if err := db.Table("votes").
		Select(`votes.id AS vote_id, users.username AS voter_username, candidates.name AS candidate_name,
			positions.name AS position_name, elections.title AS election_title, votes.voted_at AS timestamp`).
		Joins("JOIN users ON users.id = votes.voter_id").
		Joins("JOIN candidates ON candidates.id = votes.candidate_id").
		Joins("JOIN positions ON positions.id = votes.position_id").
		Joins("JOIN elections ON elections.id = positions.election_id").
		Order("votes.voted_at DESC").
		Order("votes.id DESC").
		Limit(limit).
		Scan(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent votes: %w", err)
	}

	return votes, nil
}

func (r *dashboardRepository) GetRecentUsers(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentUserData, error) {
	db := r.getDB(tx).WithContext(ctx)

	var users []repositories.RecentUserData
	if err := db.Model(&models.User{}).
		Select("id, username, email, created_at AS date_joined").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Scan(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent users: %w", err)
	}

	return users, nil
}

func (r *dashboardRepository) GetTopDepartments(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.DepartmentStatsData, error) {
	db := r.getDB(tx).WithContext(ctx)

	var departments []repositories.DepartmentStatsData
	if err := db.Model(&models.UserProfile{}).
		Select("department, COUNT(*) AS count").
		Where("department <> ?", "").
		Group("department").
		Order("count DESC").
		Order("department ASC").
		Limit(limit).
		Scan(&departments).Error; err != nil {
		return nil, fmt.Errorf("failed to get department stats: %w", err)
	}

	return departments, nil
}
