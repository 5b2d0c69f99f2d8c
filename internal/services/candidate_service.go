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

type candidateService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCandidateService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CandidateService {
	return &candidateService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *candidateService) Create(ctx context.Context, req *CreateCandidateRequest) (*models.Candidate, error) {
	s.logger.Info("Creating candidate", "position_id", req.PositionID, "student_id", req.StudentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	candidate := &models.Candidate{
		Name:       strings.TrimSpace(req.Name),
		StudentID:  strings.TrimSpace(req.StudentID),
		PositionID: req.PositionID,
		Manifesto:  req.Manifesto,
		Photo:      req.Photo,
	}

	var electionID uint
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		position, err := s.repo.Position().GetByID(ctx, tx, req.PositionID)
		if err != nil {
			return notFoundAs(err, ErrPositionNotFound, "failed to get position")
		}
		electionID = position.ElectionID

		if err := s.repo.Candidate().Create(ctx, tx, candidate); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateStudentID
			}
			return fmt.Errorf("failed to create candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), electionID)
	return candidate, nil
}

func (s *candidateService) GetByID(ctx context.Context, id uint) (*models.Candidate, error) {
	candidate, err := s.repo.Candidate().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrCandidateNotFound, "failed to get candidate")
	}
	return candidate, nil
}

func (s *candidateService) List(ctx context.Context, filters repositories.CandidateFilters) (*CandidateListResponse, error) {
	filters.Limit = clampLimit(filters.Limit)

	candidates, total, err := s.repo.Candidate().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return &CandidateListResponse{Candidates: candidates, Total: total}, nil
}

func (s *candidateService) Update(ctx context.Context, id uint, req *UpdateCandidateRequest) (*models.Candidate, error) {
	s.logger.Info("Updating candidate", "candidate_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		candidate        *models.Candidate
		touchedElections []uint
	)
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		existing, err := s.repo.Candidate().GetByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, ErrCandidateNotFound, "failed to get candidate")
		}
		if existing.Position != nil {
			touchedElections = append(touchedElections, existing.Position.ElectionID)
		}

		if req.PositionID != nil && *req.PositionID != existing.PositionID {
			votes, err := s.repo.Vote().CountByCandidate(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("failed to count candidate votes: %w", err)
			}
			if votes > 0 {
				return NewBusinessRuleError("candidate_has_votes",
					"cannot move a candidate who has already received votes",
					map[string]interface{}{"candidate_id": id, "votes": votes})
			}

			target, err := s.repo.Position().GetByID(ctx, tx, *req.PositionID)
			if err != nil {
				return notFoundAs(err, ErrPositionNotFound, "failed to get position")
			}
			existing.PositionID = target.ID
			existing.Position = target
			touchedElections = append(touchedElections, target.ElectionID)
		}

		if req.Name != nil {
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.StudentID != nil {
			existing.StudentID = strings.TrimSpace(*req.StudentID)
		}
		if req.Manifesto != nil {
			existing.Manifesto = *req.Manifesto
		}
		if req.Photo != nil {
			existing.Photo = *req.Photo
		}

		if err := s.repo.Candidate().Update(ctx, tx, existing); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateStudentID
			}
			// A vote committed after the count above still pins the candidate.
			if repositories.IsForeignKeyError(err) {
				return NewBusinessRuleError("candidate_has_votes",
					"cannot move a candidate who has already received votes",
					map[string]interface{}{"candidate_id": id})
			}
			return notFoundAs(err, ErrCandidateNotFound, "failed to update candidate")
		}

		candidate = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, electionID := range touchedElections {
		cache.InvalidateElectionCache(ctx, s.repo.Cache(), electionID)
	}
	return candidate, nil
}

func (s *candidateService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting candidate", "candidate_id", id)

	candidate, err := s.repo.Candidate().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrCandidateNotFound, "failed to get candidate")
	}

	if err := s.repo.Candidate().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrCandidateNotFound, "failed to delete candidate")
	}

	if candidate.Position != nil {
		cache.InvalidateElectionCache(ctx, s.repo.Cache(), candidate.Position.ElectionID)
	}
	return nil
}
