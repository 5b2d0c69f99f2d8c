package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "election-service"
	EventVersion = "1.0"
)

type EventType string

const (
	EventVoteCast              EventType = "vote.cast"
	EventElectionStatusChanged EventType = "election.status_changed"
	EventImportCompleted       EventType = "import.completed"
)

// Event is the JSON envelope published for every domain event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and the current time
func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type VoteCastEvent struct {
	VoteID      uint      `json:"vote_id"`
	ElectionID  uint      `json:"election_id"`
	PositionID  uint      `json:"position_id"`
	CandidateID uint      `json:"candidate_id"`
	VoterID     uint      `json:"voter_id"`
	CastAt      time.Time `json:"cast_at"`
}

type ElectionStatusChangedEvent struct {
	ElectionID uint   `json:"election_id"`
	Title      string `json:"title"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	ChangedBy  *uint  `json:"changed_by,omitempty"`
	SnapshotID *uint  `json:"snapshot_id,omitempty"`
}

type ImportCompletedEvent struct {
	Entity  string `json:"entity"`
	Total   int    `json:"total"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
}
