package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

// applyPagination applies limit and offset when set
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// applySort applies a whitelisted sort column with an id tie-break
func applySort(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool, defaultColumn string) *gorm.DB {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = defaultColumn
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}

	return query.Order(sortBy + " " + order).Order("id " + order)
}

// applyElectionFilters applies common filters to election queries
func applyElectionFilters(query *gorm.DB, filters repositories.ElectionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}

// deleteVotesForPositions removes votes cast in any of the given positions
func deleteVotesForPositions(ctx context.Context, db *gorm.DB, positionIDs []uint) error {
	if len(positionIDs) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Where("position_id IN ?", positionIDs).Delete(&models.Vote{}).Error; err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	return nil
}

// deleteCandidatesForPositions removes candidates of the given positions
func deleteCandidatesForPositions(ctx context.Context, db *gorm.DB, positionIDs []uint) error {
	if len(positionIDs) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Where("position_id IN ?", positionIDs).Delete(&models.Candidate{}).Error; err != nil {
		return fmt.Errorf("failed to delete candidates: %w", err)
	}
	return nil
}

// cascadeDeletePositions removes positions with their candidates and votes.
// Children go first so the delete works with or without FK cascades.
func cascadeDeletePositions(ctx context.Context, db *gorm.DB, positionIDs []uint) error {
	if len(positionIDs) == 0 {
		return nil
	}
	if err := deleteVotesForPositions(ctx, db, positionIDs); err != nil {
		return err
	}
	if err := deleteCandidatesForPositions(ctx, db, positionIDs); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Where("id IN ?", positionIDs).Delete(&models.Position{}).Error; err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	return nil
}
