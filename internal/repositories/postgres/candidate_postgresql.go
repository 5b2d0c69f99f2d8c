package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type CandidatePostgreSQL struct {
	db *gorm.DB
}

func NewCandidatePostgreSQL(db *gorm.DB) repositories.CandidateRepository {
	return &CandidatePostgreSQL{db: db}
}

func (c *CandidatePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CandidatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error {
	if err := c.getDB(tx).WithContext(ctx).Omit("Position").Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetByID preloads the position and its election
func (c *CandidatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := c.getDB(tx).WithContext(ctx).
		Preload("Position.Election").
		First(&candidate, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &candidate, nil
}

func (c *CandidatePostgreSQL) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := c.getDB(tx).WithContext(ctx).
		Preload("Position.Election").
		Where("student_id = ?", studentID).
		First(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to get candidate by student id: %w", err)
	}
	return &candidate, nil
}

func (c *CandidatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error {
	result := c.getDB(tx).WithContext(ctx).Model(&models.Candidate{}).Where("id = ?", candidate.ID).Updates(map[string]interface{}{
		"name":        candidate.Name,
		"student_id":  candidate.StudentID,
		"position_id": candidate.PositionID,
		"manifesto":   candidate.Manifesto,
		"photo":       candidate.Photo,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update candidate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update candidate: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (c *CandidatePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return c.getDB(tx).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var candidate models.Candidate
		if err := db.Select("id").First(&candidate, id).Error; err != nil {
			return fmt.Errorf("failed to get candidate before delete: %w", err)
		}
		if err := db.Where("candidate_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("failed to delete candidate votes: %w", err)
		}
		if err := db.Delete(&models.Candidate{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete candidate: %w", err)
		}
		return nil
	})
}

func (c *CandidatePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CandidateFilters) ([]*models.Candidate, int64, error) {
	query := c.getDB(tx).WithContext(ctx).Model(&models.Candidate{})
	if filters.PositionID != nil {
		query = query.Where("candidates.position_id = ?", *filters.PositionID)
	}
	if filters.ElectionID != nil {
		query = query.Where("candidates.position_id IN (?)",
			c.getDB(tx).Model(&models.Position{}).Select("id").Where("election_id = ?", *filters.ElectionID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	query = applyPagination(query.Order("candidates.position_id ASC").Order("candidates.name ASC").Order("candidates.id ASC"), filters.Limit, filters.Offset)

	var candidates []*models.Candidate
	if err := query.Preload("Position.Election").Find(&candidates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, total, nil
}
