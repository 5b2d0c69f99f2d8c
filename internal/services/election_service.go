package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

type electionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewElectionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ElectionService {
	return &electionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// statusChange is collected inside a transaction and published after commit
type statusChange struct {
	election   *models.Election
	oldStatus  models.ElectionStatus
	actorID    *uint
	snapshotID *uint
}

// ===== CORE CRUD OPERATIONS =====

func (s *electionService) Create(ctx context.Context, req *CreateElectionRequest, creatorID uint) (*models.Election, error) {
	s.logger.Info("Creating election", "creator_id", creatorID, "title", req.Title)

	if errors := s.validator.GetBusinessValidator().ValidateElectionCreate(req); len(errors) > 0 {
		return nil, errors
	}

	status := req.Status
	if status == "" {
		status = models.ElectionUpcoming
	}

	election := &models.Election{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Status:      status,
	}
	if creatorID != 0 {
		election.CreatedBy = &creatorID
	}

	if err := s.repo.Election().Create(ctx, nil, election); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("failed to create election: %w", err)
	}

	cache.SafeDelete(ctx, s.repo.Cache().Stats, cache.DashboardKey)

	s.logger.Info("Election created", "election_id", election.ID)
	return election, nil
}

func (s *electionService) GetByID(ctx context.Context, id uint) (*models.Election, error) {
	election, err := s.repo.Election().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrElectionNotFound, "failed to get election")
	}
	return election, nil
}

func (s *electionService) GetWithDetails(ctx context.Context, id uint) (*models.Election, error) {
	election, err := s.repo.Election().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrElectionNotFound, "failed to get election details")
	}
	return election, nil
}

// GetBallot returns the election tree annotated with the voter's choices
func (s *electionService) GetBallot(ctx context.Context, id uint, voterID uint) (*BallotResponse, error) {
	election, err := s.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	votes, err := s.repo.Vote().ListByVoter(ctx, nil, voterID, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to list voter ballots: %w", err)
	}
	chosen := make(map[uint]uint, len(votes))
	for _, v := range votes {
		chosen[v.PositionID] = v.CandidateID
	}

	positions := make([]BallotPosition, 0, len(election.Positions))
	for _, p := range election.Positions {
		bp := BallotPosition{
			ID:            p.ID,
			Name:          p.Name,
			MaxCandidates: p.MaxCandidates,
			Candidates:    p.Candidates,
		}
		if bp.Candidates == nil {
			bp.Candidates = []models.Candidate{}
		}
		if candidateID, ok := chosen[p.ID]; ok {
			bp.HasVoted = true
			bp.VotedCandidateID = &candidateID
		}
		positions = append(positions, bp)
	}

	summary := *election
	summary.Positions = nil

	return &BallotResponse{Election: &summary, Positions: positions}, nil
}

func (s *electionService) List(ctx context.Context, filters repositories.ElectionFilters) (*ElectionListResponse, error) {
	filters.Limit = clampLimit(filters.Limit)
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	elections, total, err := s.repo.Election().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}

	return &ElectionListResponse{
		Elections: elections,
		Total:     total,
		Page:      filters.Offset/filters.Limit + 1,
		Size:      filters.Limit,
	}, nil
}

func (s *electionService) Update(ctx context.Context, id uint, req *UpdateElectionRequest, actorID uint) (*models.Election, error) {
	s.logger.Info("Updating election", "election_id", id, "actor_id", actorID)

	var (
		election *models.Election
		change   *statusChange
	)
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		existing, err := s.repo.Election().GetByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, ErrElectionNotFound, "failed to get election")
		}

		if errors := s.validator.GetBusinessValidator().ValidateElectionUpdate(req, existing); len(errors) > 0 {
			return errors
		}

		oldStatus := existing.Status
		if req.Title != nil {
			existing.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.StartDate != nil {
			existing.StartDate = req.StartDate.UTC()
		}
		if req.EndDate != nil {
			existing.EndDate = req.EndDate.UTC()
		}
		if req.Status != nil {
			existing.Status = *req.Status
		}

		if err := s.repo.Election().Update(ctx, tx, existing); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateTitle
			}
			return notFoundAs(err, ErrElectionNotFound, "failed to update election")
		}

		if existing.Status != oldStatus {
			change, err = s.transition(ctx, tx, existing, oldStatus, actorID)
			if err != nil {
				return err
			}
		}

		election = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), id)
	s.publishStatusChange(ctx, change)

	return election, nil
}

func (s *electionService) UpdateStatus(ctx context.Context, id uint, req *UpdateElectionStatusRequest, actorID uint) (*models.Election, error) {
	s.logger.Info("Updating election status", "election_id", id, "new_status", req.Status, "actor_id", actorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		election *models.Election
		change   *statusChange
	)
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		existing, err := s.repo.Election().GetByID(ctx, tx, id)
		if err != nil {
			return notFoundAs(err, ErrElectionNotFound, "failed to get election")
		}

		oldStatus := existing.Status
		if oldStatus == req.Status {
			election = existing
			return nil
		}

		if err := s.repo.Election().UpdateStatus(ctx, tx, id, req.Status); err != nil {
			return notFoundAs(err, ErrElectionNotFound, "failed to update election status")
		}
		existing.Status = req.Status

		change, err = s.transition(ctx, tx, existing, oldStatus, actorID)
		if err != nil {
			return err
		}

		election = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), id)
	s.publishStatusChange(ctx, change)

	return election, nil
}

func (s *electionService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting election", "election_id", id)

	if err := s.repo.Election().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrElectionNotFound, "failed to delete election")
	}

	cache.InvalidateElectionCache(ctx, s.repo.Cache(), id)
	return nil
}

// ===== STATUS TRANSITIONS =====

// transition runs inside tx after the status column changed. Entering ended
// freezes the tabulation so later edits cannot alter the official result.
func (s *electionService) transition(ctx context.Context, tx *gorm.DB, election *models.Election, oldStatus models.ElectionStatus, actorID uint) (*statusChange, error) {
	change := &statusChange{election: election, oldStatus: oldStatus}
	if actorID != 0 {
		change.actorID = &actorID
	}

	if election.Status == models.ElectionEnded {
		snapshot, err := freezeResults(ctx, s.repo, tx, election.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to freeze results: %w", err)
		}
		change.snapshotID = &snapshot.ID
		s.logger.Info("Result snapshot stored", "election_id", election.ID, "snapshot_id", snapshot.ID, "total_votes", snapshot.TotalVotes)
	}

	return change, nil
}

func (s *electionService) publishStatusChange(ctx context.Context, change *statusChange) {
	if change == nil {
		return
	}
	publish(ctx, s.publisher, s.logger, events.EventElectionStatusChanged, events.ElectionStatusChangedEvent{
		ElectionID: change.election.ID,
		Title:      change.election.Title,
		OldStatus:  string(change.oldStatus),
		NewStatus:  string(change.election.Status),
		ChangedBy:  change.actorID,
		SnapshotID: change.snapshotID,
	})
}
