package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

type voteService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewVoteService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) VoteService {
	return &voteService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *voteService) CastVote(ctx context.Context, voterID, positionID uint, req *CastVoteRequest) (*models.Vote, error) {
	s.logger.Info("Casting vote", "voter_id", voterID, "position_id", positionID, "candidate_id", req.CandidateID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		vote       *models.Vote
		electionID uint
	)
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		position, err := s.repo.Position().GetByID(ctx, tx, positionID)
		if err != nil {
			return notFoundAs(err, ErrPositionNotFound, "failed to get position")
		}
		if position.Election == nil {
			return fmt.Errorf("position %d loaded without election", positionID)
		}
		electionID = position.ElectionID

		if position.Election.Status != models.ElectionActive {
			return ErrElectionClosed
		}

		candidate, err := s.repo.Candidate().GetByID(ctx, tx, req.CandidateID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCandidateMismatch
			}
			return fmt.Errorf("failed to get candidate: %w", err)
		}
		if candidate.PositionID != position.ID {
			return ErrCandidateMismatch
		}

		vote = &models.Vote{
			VoterID:     voterID,
			PositionID:  position.ID,
			CandidateID: candidate.ID,
		}
		if err := s.repo.Vote().Create(ctx, tx, vote); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateVote
			}
			// The candidate moved to another position after it was read.
			if repositories.IsForeignKeyError(err) {
				return ErrCandidateMismatch
			}
			return fmt.Errorf("failed to record vote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateResultsCache(ctx, s.repo.Cache(), electionID)
	publish(ctx, s.publisher, s.logger, events.EventVoteCast, events.VoteCastEvent{
		VoteID:      vote.ID,
		ElectionID:  electionID,
		PositionID:  vote.PositionID,
		CandidateID: vote.CandidateID,
		VoterID:     vote.VoterID,
		CastAt:      vote.Timestamp,
	})

	s.logger.Info("Vote recorded", "vote_id", vote.ID, "election_id", electionID)
	return vote, nil
}

func (s *voteService) GetMyVotes(ctx context.Context, voterID uint, electionID *uint) ([]*models.Vote, error) {
	if electionID != nil {
		if _, err := s.repo.Election().GetByID(ctx, nil, *electionID); err != nil {
			return nil, notFoundAs(err, ErrElectionNotFound, "failed to get election")
		}
	}

	votes, err := s.repo.Vote().ListByVoter(ctx, nil, voterID, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}
