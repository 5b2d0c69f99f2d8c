package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
)

// ===== FILTERS =====

type ElectionFilters struct {
	Status    *models.ElectionStatus `json:"status"`
	Search    string                 `json:"search"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
	SortBy    string                 `json:"sort_by"`    // "start_date", "title", "created_at"
	SortOrder string                 `json:"sort_order"` // "asc", "desc"
}

type PositionFilters struct {
	ElectionID *uint `json:"election_id"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

type CandidateFilters struct {
	PositionID *uint `json:"position_id"`
	ElectionID *uint `json:"election_id"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

type UserFilters struct {
	IsStaff *bool  `json:"is_staff"`
	Search  string `json:"search"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// ===== REPOSITORIES =====
//
// Every method accepts an optional transaction; nil means the repository's own connection.

type ElectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, election *models.Election) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Election, error)
	// GetByIDWithDetails loads positions (by name) and their candidates (by name)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Election, error)
	GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*models.Election, error)
	Update(ctx context.Context, tx *gorm.DB, election *models.Election) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ElectionStatus) error
	// Delete removes the election with its positions, candidates, votes and snapshots
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters ElectionFilters) ([]*models.Election, int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.ElectionStatus]int64, error)
}

type PositionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, position *models.Position) error
	// GetByID preloads the owning election
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Position, error)
	GetByNameAndElection(ctx context.Context, tx *gorm.DB, name string, electionID uint) (*models.Position, error)
	// FindByName returns every position with the given name across elections
	FindByName(ctx context.Context, tx *gorm.DB, name string) ([]*models.Position, error)
	Update(ctx context.Context, tx *gorm.DB, position *models.Position) error
	// Delete removes the position with its candidates and votes
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters PositionFilters) ([]*models.Position, int64, error)
	// ListByElection orders by name, then id
	ListByElection(ctx context.Context, tx *gorm.DB, electionID uint) ([]*models.Position, error)
}

type CandidateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Candidate, error)
	GetByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (*models.Candidate, error)
	Update(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error
	// Delete removes the candidate and the votes cast for it
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters CandidateFilters) ([]*models.Candidate, int64, error)
}

type VoteRepository interface {
	// Create inserts a vote. A second vote for the same (voter, position)
	// fails with an error matching gorm.ErrDuplicatedKey.
	Create(ctx context.Context, tx *gorm.DB, vote *models.Vote) error
	GetByVoterAndPosition(ctx context.Context, tx *gorm.DB, voterID, positionID uint) (*models.Vote, error)
	ListByVoter(ctx context.Context, tx *gorm.DB, voterID uint, electionID *uint) ([]*models.Vote, error)
	CountByPosition(ctx context.Context, tx *gorm.DB, positionID uint) (int64, error)
	CountByCandidate(ctx context.Context, tx *gorm.DB, candidateID uint) (int64, error)
	// TallyByElection counts votes per candidate for every candidate of the
	// election, including candidates with no votes
	TallyByElection(ctx context.Context, tx *gorm.DB, electionID uint) ([]models.CandidateTally, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Vote, error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *models.ResultSnapshot) error
	GetLatest(ctx context.Context, tx *gorm.DB, electionID uint) (*models.ResultSnapshot, error)
}
