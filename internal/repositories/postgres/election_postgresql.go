package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type ElectionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewElectionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ElectionRepository {
	return &ElectionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (e *ElectionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *ElectionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, election *models.Election) error {
	if err := e.getDB(tx).WithContext(ctx).Create(election).Error; err != nil {
		return fmt.Errorf("failed to create election: %w", err)
	}
	return nil
}

// GetByID retrieves an election by ID. Reads outside a transaction go through
// the cache; reads inside one never populate it with uncommitted data.
func (e *ElectionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Election, error) {
	fetch := func() (interface{}, error) {
		var election models.Election
		if err := e.getDB(tx).WithContext(ctx).First(&election, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get election: %w", err)
		}
		return &election, nil
	}

	if tx != nil {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.Election), nil
	}

	var election models.Election
	if err := e.cacheManager.Election.CacheOrExecute(ctx, cache.ElectionKey(id), &election, cache.ElectionCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &election, nil
}

// GetByIDWithDetails retrieves an election with positions and candidates
func (e *ElectionPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Election, error) {
	fetch := func() (interface{}, error) {
		var election models.Election
		err := e.getDB(tx).WithContext(ctx).
			Preload("Positions", func(db *gorm.DB) *gorm.DB {
				return db.Order("positions.name ASC").Order("positions.id ASC")
			}).
			Preload("Positions.Candidates", func(db *gorm.DB) *gorm.DB {
				return db.Order("candidates.name ASC").Order("candidates.id ASC")
			}).
			First(&election, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get election details: %w", err)
		}

		election.PositionCount = int64(len(election.Positions))
		for _, position := range election.Positions {
			election.CandidateCount += int64(len(position.Candidates))
		}
		return &election, nil
	}

	if tx != nil {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.Election), nil
	}

	var election models.Election
	if err := e.cacheManager.Election.CacheOrExecute(ctx, cache.ElectionDetailsKey(id), &election, cache.ElectionCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &election, nil
}

func (e *ElectionPostgreSQL) GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*models.Election, error) {
	var election models.Election
	if err := e.getDB(tx).WithContext(ctx).Where("title = ?", title).First(&election).Error; err != nil {
		return nil, fmt.Errorf("failed to get election by title: %w", err)
	}
	return &election, nil
}

func (e *ElectionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, election *models.Election) error {
	result := e.getDB(tx).WithContext(ctx).Model(&models.Election{}).Where("id = ?", election.ID).Updates(map[string]interface{}{
		"title":       election.Title,
		"description": election.Description,
		"start_date":  election.StartDate,
		"end_date":    election.EndDate,
		"status":      election.Status,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update election: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update election: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (e *ElectionPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ElectionStatus) error {
	result := e.getDB(tx).WithContext(ctx).Model(&models.Election{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update election status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update election status: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (e *ElectionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return e.getDB(tx).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var election models.Election
		if err := db.Select("id").First(&election, id).Error; err != nil {
			return fmt.Errorf("failed to get election before delete: %w", err)
		}

		var positionIDs []uint
		if err := db.Model(&models.Position{}).Where("election_id = ?", id).Pluck("id", &positionIDs).Error; err != nil {
			return fmt.Errorf("failed to list election positions: %w", err)
		}

		if err := cascadeDeletePositions(ctx, db, positionIDs); err != nil {
			return err
		}

		if err := db.Where("election_id = ?", id).Delete(&models.ResultSnapshot{}).Error; err != nil {
			return fmt.Errorf("failed to delete result snapshots: %w", err)
		}

		if err := db.Delete(&models.Election{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete election: %w", err)
		}
		return nil
	})
}

func (e *ElectionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ElectionFilters) ([]*models.Election, int64, error) {
	query := applyElectionFilters(e.getDB(tx).WithContext(ctx).Model(&models.Election{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count elections: %w", err)
	}

	allowedSort := map[string]bool{"start_date": true, "end_date": true, "title": true, "created_at": true, "status": true}
	query = applySort(query, filters.SortBy, filters.SortOrder, allowedSort, "start_date")
	query = applyPagination(query, filters.Limit, filters.Offset)

	var elections []*models.Election
	if err := query.Find(&elections).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list elections: %w", err)
	}

	return elections, total, nil
}

func (e *ElectionPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB) (map[models.ElectionStatus]int64, error) {
	var rows []struct {
		Status models.ElectionStatus
		Count  int64
	}
	if err := e.getDB(tx).WithContext(ctx).
		Model(&models.Election{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count elections by status: %w", err)
	}

	counts := make(map[models.ElectionStatus]int64, len(models.ElectionStatuses))
	for _, status := range models.ElectionStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
