package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type PositionPostgreSQL struct {
	db *gorm.DB
}

func NewPositionPostgreSQL(db *gorm.DB) repositories.PositionRepository {
	return &PositionPostgreSQL{db: db}
}

func (p *PositionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PositionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, position *models.Position) error {
	if err := p.getDB(tx).WithContext(ctx).Omit("Election", "Candidates").Create(position).Error; err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

func (p *PositionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Position, error) {
	var position models.Position
	if err := p.getDB(tx).WithContext(ctx).Preload("Election").First(&position, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &position, nil
}

func (p *PositionPostgreSQL) GetByNameAndElection(ctx context.Context, tx *gorm.DB, name string, electionID uint) (*models.Position, error) {
	var position models.Position
	if err := p.getDB(tx).WithContext(ctx).
		Where("name = ? AND election_id = ?", name, electionID).
		First(&position).Error; err != nil {
		return nil, fmt.Errorf("failed to get position by name: %w", err)
	}
	return &position, nil
}

func (p *PositionPostgreSQL) FindByName(ctx context.Context, tx *gorm.DB, name string) ([]*models.Position, error) {
	var positions []*models.Position
	if err := p.getDB(tx).WithContext(ctx).
		Preload("Election").
		Where("name = ?", name).
		Order("id ASC").
		Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to find positions by name: %w", err)
	}
	return positions, nil
}

func (p *PositionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, position *models.Position) error {
	result := p.getDB(tx).WithContext(ctx).Model(&models.Position{}).Where("id = ?", position.ID).Updates(map[string]interface{}{
		"name":           position.Name,
		"election_id":    position.ElectionID,
		"max_candidates": position.MaxCandidates,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update position: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update position: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (p *PositionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return p.getDB(tx).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var position models.Position
		if err := db.Select("id").First(&position, id).Error; err != nil {
			return fmt.Errorf("failed to get position before delete: %w", err)
		}
		return cascadeDeletePositions(ctx, db, []uint{id})
	})
}

func (p *PositionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PositionFilters) ([]*models.Position, int64, error) {
	query := p.getDB(tx).WithContext(ctx).Model(&models.Position{})
	if filters.ElectionID != nil {
		query = query.Where("election_id = ?", *filters.ElectionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count positions: %w", err)
	}

	query = applyPagination(query.Order("election_id ASC").Order("name ASC").Order("id ASC"), filters.Limit, filters.Offset)

	var positions []*models.Position
	if err := query.Preload("Election").Find(&positions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list positions: %w", err)
	}

	return positions, total, nil
}

func (p *PositionPostgreSQL) ListByElection(ctx context.Context, tx *gorm.DB, electionID uint) ([]*models.Position, error) {
	var positions []*models.Position
	if err := p.getDB(tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("name ASC").
		Order("id ASC").
		Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to list election positions: %w", err)
	}
	return positions, nil
}
