package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository interface for admin dashboard aggregates
type DashboardRepository interface {
	GetTotals(ctx context.Context, tx *gorm.DB) (*DashboardTotals, error)
	// GetElectionStats returns counts for the most recently created elections
	GetElectionStats(ctx context.Context, tx *gorm.DB, limit int) ([]ElectionStatsData, error)
	GetRecentVotes(ctx context.Context, tx *gorm.DB, limit int) ([]RecentVoteData, error)
	GetRecentUsers(ctx context.Context, tx *gorm.DB, limit int) ([]RecentUserData, error)
	GetTopDepartments(ctx context.Context, tx *gorm.DB, limit int) ([]DepartmentStatsData, error)
}

// Data structures for dashboard responses

type DashboardTotals struct {
	TotalUsers      int64 `json:"total_users"`
	TotalProfiles   int64 `json:"total_profiles"`
	TotalElections  int64 `json:"total_elections"`
	ActiveElections int64 `json:"active_elections"`
	TotalVotes      int64 `json:"total_votes"`
}

type ElectionStatsData struct {
	ElectionID     uint      `json:"election_id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	PositionCount  int64     `json:"position_count"`
	CandidateCount int64     `json:"candidate_count"`
	VoteCount      int64     `json:"vote_count"`
}

type RecentVoteData struct {
	VoteID        uint      `json:"vote_id"`
	VoterUsername string    `json:"voter_username"`
	CandidateName string    `json:"candidate_name"`
	PositionName  string    `json:"position_name"`
	ElectionTitle string    `json:"election_title"`
	Timestamp     time.Time `json:"timestamp"`
}

type RecentUserData struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

type DepartmentStatsData struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}
