package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type SnapshotPostgreSQL struct {
	db *gorm.DB
}

func NewSnapshotPostgreSQL(db *gorm.DB) repositories.SnapshotRepository {
	return &SnapshotPostgreSQL{db: db}
}

func (s *SnapshotPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SnapshotPostgreSQL) Create(ctx context.Context, tx *gorm.DB, snapshot *models.ResultSnapshot) error {
	if err := s.getDB(tx).WithContext(ctx).Omit("Election").Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to create result snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotPostgreSQL) GetLatest(ctx context.Context, tx *gorm.DB, electionID uint) (*models.ResultSnapshot, error) {
	var snapshot models.ResultSnapshot
	if err := s.getDB(tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("computed_at DESC").
		Order("id DESC").
		First(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to get result snapshot: %w", err)
	}
	return &snapshot, nil
}
