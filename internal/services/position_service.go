package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

type positionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewPositionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) PositionService {
	return &positionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *positionService) Create(ctx context.Context, req *CreatePositionRequest) (*models.Position, error) {
	s.logger.Info("Creating position", "election_id", req.ElectionID, "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	position := &models.Position{
		Name:          strings.TrimSpace(req.Name),
		ElectionID:    req.ElectionID,
		MaxCandidates: 1,
	}
	if req.MaxCandidates != nil {
		position.MaxCandidates = *req.MaxCandidates
	}

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.repo.Election().GetByID(ctx, tx, req.ElectionID); err != nil {
			return notFoundAs(err, ErrElectionNotFound, "failed to get election")
		}
		if err := s.repo.Position().Create(ctx, tx, position); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicatePosition
			}
			return fmt.Errorf("failed to create position: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), position.ElectionID)
	return position, nil
}

func (s *positionService) GetByID(ctx context.Context, id uint) (*models.Position, error) {
	position, err := s.repo.Position().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrPositionNotFound, "failed to get position")
	}
	return position, nil
}

func (s *positionService) List(ctx context.Context, filters repositories.PositionFilters) (*PositionListResponse, error) {
	filters.Limit = clampLimit(filters.Limit)

	positions, total, err := s.repo.Position().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return &PositionListResponse{Positions: positions, Total: total}, nil
}

func (s *positionService) Update(ctx context.Context, id uint, req *UpdatePositionRequest) (*models.Position, error) {
	s.logger.Info("Updating position", "position_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		position      *models.Position
		oldElectionID uint
	)
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		existing, err := s.repo.Position().GetByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, ErrPositionNotFound, "failed to get position")
		}
		oldElectionID = existing.ElectionID

		if req.Name != nil {
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.MaxCandidates != nil {
			existing.MaxCandidates = *req.MaxCandidates
		}
		if req.ElectionID != nil && *req.ElectionID != existing.ElectionID {
			election, err := s.repo.Election().GetByID(ctx, tx, *req.ElectionID)
			if err != nil {
				return notFoundAs(err, ErrElectionNotFound, "failed to get election")
			}
			existing.ElectionID = election.ID
			existing.Election = election
		}

		if err := s.repo.Position().Update(ctx, tx, existing); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicatePosition
			}
			return notFoundAs(err, ErrPositionNotFound, "failed to update position")
		}

		position = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), oldElectionID)
	if position.ElectionID != oldElectionID {
		cache.InvalidateElectionCache(ctx, s.repo.Cache(), position.ElectionID)
	}
	return position, nil
}

func (s *positionService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting position", "position_id", id)

	position, err := s.repo.Position().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrPositionNotFound, "failed to get position")
	}

	if err := s.repo.Position().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrPositionNotFound, "failed to delete position")
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), position.ElectionID)
	return nil
}
