package models

import "time"

// ===== TABULATION =====

// CandidateResult is one ranked row of a position's results
type CandidateResult struct {
	CandidateID uint    `json:"candidate_id"`
	Name        string  `json:"name"`
	StudentID   string  `json:"student_id"`
	Votes       int64   `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

type PositionResult struct {
	PositionID uint              `json:"position_id"`
	Name       string            `json:"name"`
	TotalVotes int64             `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
}

// ElectionResults is the single tabulation output every results view is rendered from
type ElectionResults struct {
	ElectionID uint             `json:"election_id"`
	Title      string           `json:"title"`
	Status     ElectionStatus   `json:"status"`
	TotalVotes int64            `json:"total_votes"`
	Positions  []PositionResult `json:"positions"`
	ComputedAt time.Time        `json:"computed_at"`
}

// LiveCandidateCount is the compact per-candidate entry of the live snapshot
type LiveCandidateCount struct {
	Name  string `json:"name"`
	Votes int64  `json:"votes"`
}

// LiveVoteData maps position name to candidate counts
type LiveVoteData map[string][]LiveCandidateCount

// CandidateTally is a raw aggregate row: one candidate with its vote count
type CandidateTally struct {
	PositionID  uint
	CandidateID uint
	Name        string
	StudentID   string
	Votes       int64
}

// ===== IMPORT =====

// ImportRowError describes one CSV row that was skipped
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportReport summarises a bulk CSV upsert
type ImportReport struct {
	Entity  string           `json:"entity"`
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

// AddError records a skipped row
func (r *ImportReport) AddError(line int, message string) {
	r.Skipped++
	r.Errors = append(r.Errors, ImportRowError{Line: line, Message: message})
}
