package models

import (
	"time"

	"gorm.io/datatypes"
)

type ElectionStatus string

const (
	ElectionUpcoming ElectionStatus = "upcoming"
	ElectionActive   ElectionStatus = "active"
	ElectionEnded    ElectionStatus = "ended"
)

// ElectionStatuses lists every valid status in display order
var ElectionStatuses = []ElectionStatus{ElectionUpcoming, ElectionActive, ElectionEnded}

// IsValid reports whether s is a known election status
func (s ElectionStatus) IsValid() bool {
	for _, status := range ElectionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Election struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200;uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	StartDate   time.Time      `json:"start_date" gorm:"not null;index"`
	EndDate     time.Time      `json:"end_date" gorm:"not null"`
	Status      ElectionStatus `json:"status" gorm:"not null;size:20;default:upcoming;index"`

	// Nullable so elections imported from CSV need no owner
	CreatedBy *uint     `json:"created_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator   *User      `json:"creator,omitempty" gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL"`
	Positions []Position `json:"positions,omitempty" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	PositionCount  int64 `json:"position_count" gorm:"-"`
	CandidateCount int64 `json:"candidate_count" gorm:"-"`
	VoteCount      int64 `json:"vote_count" gorm:"-"`
}

func (Election) TableName() string {
	return "elections"
}

type Position struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"not null;size:100;uniqueIndex:idx_position_election_name"`
	ElectionID    uint   `json:"election_id" gorm:"not null;index;uniqueIndex:idx_position_election_name"`
	MaxCandidates int    `json:"max_candidates" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Election   *Election   `json:"election,omitempty" gorm:"foreignKey:ElectionID"`
	Candidates []Candidate `json:"candidates,omitempty" gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
}

func (Position) TableName() string {
	return "positions"
}

// Candidate carries a unique (id, position_id) key so votes can reference the
// position a candidate stood for when the vote was cast.
type Candidate struct {
	ID         uint   `json:"id" gorm:"primaryKey;uniqueIndex:idx_candidate_position_key,priority:1"`
	Name       string `json:"name" gorm:"not null;size:100"`
	StudentID  string `json:"student_id" gorm:"not null;size:50;uniqueIndex"`
	PositionID uint   `json:"position_id" gorm:"not null;index;uniqueIndex:idx_candidate_position_key,priority:2"`
	Manifesto  string `json:"manifesto" gorm:"type:text"`
	Photo      string `json:"photo" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Position *Position `json:"position,omitempty" gorm:"foreignKey:PositionID"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// ResultSnapshot freezes the tabulated results of an election when it ends
type ResultSnapshot struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ElectionID uint           `json:"election_id" gorm:"not null;index"`
	TotalVotes int64          `json:"total_votes"`
	Payload    datatypes.JSON `json:"payload"`
	ComputedAt time.Time      `json:"computed_at" gorm:"not null"`

	Election *Election `json:"-" gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE"`
}

func (ResultSnapshot) TableName() string {
	return "result_snapshots"
}
