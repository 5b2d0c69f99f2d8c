package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateElectionRequest = validator.ElectionCreateRequest
type UpdateElectionRequest = validator.ElectionUpdateRequest
type UpdateElectionStatusRequest = validator.ElectionStatusRequest
type CreatePositionRequest = validator.PositionCreateRequest
type UpdatePositionRequest = validator.PositionUpdateRequest
type CreateCandidateRequest = validator.CandidateCreateRequest
type UpdateCandidateRequest = validator.CandidateUpdateRequest
type CastVoteRequest = validator.CastVoteRequest

type ElectionListResponse struct {
	Elections []*models.Election `json:"elections"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type PositionListResponse struct {
	Positions []*models.Position `json:"positions"`
	Total     int64              `json:"total"`
}

type CandidateListResponse struct {
	Candidates []*models.Candidate `json:"candidates"`
	Total      int64               `json:"total"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// BallotPosition is a position as seen by one voter
type BallotPosition struct {
	ID               uint               `json:"id"`
	Name             string             `json:"name"`
	MaxCandidates    int                `json:"max_candidates"`
	Candidates       []models.Candidate `json:"candidates"`
	HasVoted         bool               `json:"has_voted"`
	VotedCandidateID *uint              `json:"voted_candidate_id,omitempty"`
}

// BallotResponse is the election detail returned to voters
type BallotResponse struct {
	Election  *models.Election `json:"election"`
	Positions []BallotPosition `json:"positions"`
}

// Identity carries the verified claims of an authenticated caller
type Identity struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	IsAdmin   bool
}

// ===== SERVICE INTERFACES =====

type ElectionService interface {
	Create(ctx context.Context, req *CreateElectionRequest, creatorID uint) (*models.Election, error)
	GetByID(ctx context.Context, id uint) (*models.Election, error)
	GetWithDetails(ctx context.Context, id uint) (*models.Election, error)
	GetBallot(ctx context.Context, id uint, voterID uint) (*BallotResponse, error)
	List(ctx context.Context, filters repositories.ElectionFilters) (*ElectionListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateElectionRequest, actorID uint) (*models.Election, error)
	// UpdateStatus accepts any transition; entering ended freezes a result snapshot
	UpdateStatus(ctx context.Context, id uint, req *UpdateElectionStatusRequest, actorID uint) (*models.Election, error)
	Delete(ctx context.Context, id uint) error
}

type PositionService interface {
	Create(ctx context.Context, req *CreatePositionRequest) (*models.Position, error)
	GetByID(ctx context.Context, id uint) (*models.Position, error)
	List(ctx context.Context, filters repositories.PositionFilters) (*PositionListResponse, error)
	Update(ctx context.Context, id uint, req *UpdatePositionRequest) (*models.Position, error)
	Delete(ctx context.Context, id uint) error
}

type CandidateService interface {
	Create(ctx context.Context, req *CreateCandidateRequest) (*models.Candidate, error)
	GetByID(ctx context.Context, id uint) (*models.Candidate, error)
	List(ctx context.Context, filters repositories.CandidateFilters) (*CandidateListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCandidateRequest) (*models.Candidate, error)
	Delete(ctx context.Context, id uint) error
}

type VoteService interface {
	// CastVote records one ballot; the (voter, position) unique index decides duplicates
	CastVote(ctx context.Context, voterID, positionID uint, req *CastVoteRequest) (*models.Vote, error)
	GetMyVotes(ctx context.Context, voterID uint, electionID *uint) ([]*models.Vote, error)
}

type ResultsService interface {
	Tabulate(ctx context.Context, electionID uint) (*models.ElectionResults, error)
	LiveSnapshot(ctx context.Context, electionID uint) (models.LiveVoteData, error)
	ExportCSV(ctx context.Context, electionID uint, w io.Writer) error
	ExportXLSX(ctx context.Context, electionID uint, w io.Writer) error
	GetSnapshot(ctx context.Context, electionID uint) (*models.ResultSnapshot, error)
}

type ImportExportService interface {
	ImportUsers(ctx context.Context, r io.Reader) (*models.ImportReport, error)
	ImportElections(ctx context.Context, r io.Reader) (*models.ImportReport, error)
	ImportPositions(ctx context.Context, r io.Reader) (*models.ImportReport, error)
	ImportCandidates(ctx context.Context, r io.Reader) (*models.ImportReport, error)

	ExportUsers(ctx context.Context, w io.Writer) error
	ExportElections(ctx context.Context, w io.Writer) error
	ExportPositions(ctx context.Context, w io.Writer) error
	ExportCandidates(ctx context.Context, w io.Writer) error
}

type UserService interface {
	// EnsureUser returns the local account for a verified identity, creating it on first sight
	EnsureUser(ctx context.Context, identity *Identity) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	// SeedAdmin creates the superuser unless the username exists; reports whether it created one
	SeedAdmin(ctx context.Context, username, email, password string) (bool, error)
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
	CleanEmptyProfiles(ctx context.Context) (int64, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Election() ElectionService
	Position() PositionService
	Candidate() CandidateService
	Vote() VoteService
	Results() ResultsService

	// Additional service getters
	ImportExport() ImportExportService
	Dashboard() DashboardService
	User() UserService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
