package validator

import (
	"time"

	"github.com/SAP-F-2025/election-service/internal/models"
)

// ElectionCreateRequest represents the request structure for creating elections
type ElectionCreateRequest struct {
	Title       string                `json:"title" validate:"required,election_title"`
	Description string                `json:"description" validate:"max=2000"`
	StartDate   time.Time             `json:"start_date" validate:"required"`
	EndDate     time.Time             `json:"end_date" validate:"required,gtfield=StartDate"`
	Status      models.ElectionStatus `json:"status" validate:"omitempty,election_status"`
}

// ElectionUpdateRequest represents a partial election update
type ElectionUpdateRequest struct {
	Title       *string                `json:"title" validate:"omitempty,election_title"`
	Description *string                `json:"description" validate:"omitempty,max=2000"`
	StartDate   *time.Time             `json:"start_date"`
	EndDate     *time.Time             `json:"end_date"`
	Status      *models.ElectionStatus `json:"status" validate:"omitempty,election_status"`
}

type ElectionStatusRequest struct {
	Status models.ElectionStatus `json:"status" validate:"required,election_status"`
}

type PositionCreateRequest struct {
	Name          string `json:"name" validate:"required,not_blank,max=100"`
	ElectionID    uint   `json:"election_id" validate:"required"`
	MaxCandidates *int   `json:"max_candidates" validate:"omitempty,min=1,max=50"`
}

type PositionUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,not_blank,max=100"`
	ElectionID    *uint   `json:"election_id" validate:"omitempty,min=1"`
	MaxCandidates *int    `json:"max_candidates" validate:"omitempty,min=1,max=50"`
}

type CandidateCreateRequest struct {
	Name       string `json:"name" validate:"required,not_blank,max=200"`
	StudentID  string `json:"student_id" validate:"required,not_blank,max=50"`
	PositionID uint   `json:"position_id" validate:"required"`
	Manifesto  string `json:"manifesto" validate:"max=5000"`
	Photo      string `json:"photo" validate:"max=500"`
}

type CandidateUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,not_blank,max=200"`
	StudentID  *string `json:"student_id" validate:"omitempty,not_blank,max=50"`
	PositionID *uint   `json:"position_id" validate:"omitempty,min=1"`
	Manifesto  *string `json:"manifesto" validate:"omitempty,max=5000"`
	Photo      *string `json:"photo" validate:"omitempty,max=500"`
}

// CastVoteRequest is the voter's ballot for a single position
type CastVoteRequest struct {
	CandidateID uint `json:"candidate_id" validate:"required"`
}

// ===== CSV IMPORT ROWS =====

type UserImportRow struct {
	Username   string `csv:"username" validate:"required,not_blank,max=150"`
	FirstName  string `csv:"first_name" validate:"max=150"`
	LastName   string `csv:"last_name" validate:"max=150"`
	Email      string `csv:"email" validate:"omitempty,email,max=254"`
	StudentID  string `csv:"student_id" validate:"max=50"`
	RollNumber string `csv:"roll_number" validate:"max=50"`
	Department string `csv:"department" validate:"max=100"`
	Year       string `csv:"year" validate:"omitempty,numeric"`
}

type ElectionImportRow struct {
	Title       string `csv:"title" validate:"required,election_title"`
	Description string `csv:"description" validate:"max=2000"`
	StartDate   string `csv:"start_date" validate:"required"`
	EndDate     string `csv:"end_date" validate:"required"`
	Status      string `csv:"status" validate:"required,election_status"`
}

type PositionImportRow struct {
	Name          string `csv:"name" validate:"required,not_blank,max=100"`
	Election      string `csv:"election" validate:"required"`
	MaxCandidates string `csv:"max_candidates" validate:"omitempty,numeric"`
}

type CandidateImportRow struct {
	StudentID string `csv:"student_id" validate:"required,not_blank,max=50"`
	Name      string `csv:"name" validate:"required,not_blank,max=200"`
	Position  string `csv:"position" validate:"required"`
	Manifesto string `csv:"manifesto" validate:"max=5000"`
	Election  string `csv:"election"`
}
