package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type VotePostgreSQL struct {
	db *gorm.DB
}

func NewVotePostgreSQL(db *gorm.DB) repositories.VoteRepository {
	return &VotePostgreSQL{db: db}
}

func (v *VotePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

// Create relies on idx_vote_voter_position; no existence check is made first
func (v *VotePostgreSQL) Create(ctx context.Context, tx *gorm.DB, vote *models.Vote) error {
	if err := v.getDB(tx).WithContext(ctx).Omit("Voter", "Position", "Candidate").Create(vote).Error; err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

func (v *VotePostgreSQL) GetByVoterAndPosition(ctx context.Context, tx *gorm.DB, voterID, positionID uint) (*models.Vote, error) {
	var vote models.Vote
	if err := v.getDB(tx).WithContext(ctx).
		Where("voter_id = ? AND position_id = ?", voterID, positionID).
		First(&vote).Error; err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

func (v *VotePostgreSQL) ListByVoter(ctx context.Context, tx *gorm.DB, voterID uint, electionID *uint) ([]*models.Vote, error) {
	query := v.getDB(tx).WithContext(ctx).
		Preload("Candidate").
		Preload("Position").
		Where("voter_id = ?", voterID)
	if electionID != nil {
		query = query.Where("position_id IN (?)",
			v.getDB(tx).Model(&models.Position{}).Select("id").Where("election_id = ?", *electionID))
	}

	var votes []*models.Vote
	if err := query.Order("voted_at ASC").Order("id ASC").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list voter votes: %w", err)
	}
	return votes, nil
}

func (v *VotePostgreSQL) CountByPosition(ctx context.Context, tx *gorm.DB, positionID uint) (int64, error) {
	var count int64
	if err := v.getDB(tx).WithContext(ctx).
		Model(&models.Vote{}).
		Where("position_id = ?", positionID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count position votes: %w", err)
	}
	return count, nil
}

func (v *VotePostgreSQL) CountByCandidate(ctx context.Context, tx *gorm.DB, candidateID uint) (int64, error) {
	var count int64
	if err := v.getDB(tx).WithContext(ctx).
		Model(&models.Vote{}).
		Where("candidate_id = ?", candidateID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count candidate votes: %w", err)
	}
	return count, nil
}

// TallyByElection runs the single aggregate query every results view is built from
func (v *VotePostgreSQL) TallyByElection(ctx context.Context, tx *gorm.DB, electionID uint) ([]models.CandidateTally, error) {
	var tallies []models.CandidateTally
	if err := v.getDB(tx).WithContext(ctx).
		Table("candidates").
		Select("candidates.position_id AS position_id, candidates.id AS candidate_id, candidates.name AS name, candidates.student_id AS student_id, COUNT(votes.id) AS votes").
		Joins("JOIN positions ON positions.id = candidates.position_id").
		Joins("LEFT JOIN votes ON votes.candidate_id = candidates.id").
		Where("positions.election_id = ?", electionID).
		Group("candidates.position_id, candidates.id, candidates.name, candidates.student_id").
		Scan(&tallies).Error; err != nil {
		return nil, fmt.Errorf("failed to tally election votes: %w", err)
	}
	return tallies, nil
}

func (v *VotePostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := v.getDB(tx).WithContext(ctx).Model(&models.Vote{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func (v *VotePostgreSQL) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Vote, error) {
	if limit <= 0 {
		limit = 10
	}

	var votes []*models.Vote
	if err := v.getDB(tx).WithContext(ctx).
		Preload("Voter").
		Preload("Candidate").
		Preload("Position.Election").
		Order("voted_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent votes: %w", err)
	}
	return votes, nil
}
