package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/testutil"
)

func TestVoteService_CastVote(t *testing.T) {
	env := newTestEnv(t)
	_, position, alice, _ := env.seedBallot(t, "Student Council")

	ended := testutil.CreateElection(t, env.db, "Last Year", models.ElectionEnded)
	endedPosition := testutil.CreatePosition(t, env.db, ended.ID, "Treasurer")
	endedCandidate := testutil.CreateCandidate(t, env.db, endedPosition.ID, "Carol", "S-300")

	other := testutil.CreatePosition(t, env.db, position.ElectionID, "Secretary")
	dave := testutil.CreateCandidate(t, env.db, other.ID, "Dave", "S-400")

	voter := testutil.CreateUser(t, env.db, "voter", false)
	repeat := testutil.CreateUser(t, env.db, "repeat", false)
	if _, err := env.manager.Vote().CastVote(env.ctx, repeat.ID, position.ID, &CastVoteRequest{CandidateID: alice.ID}); err != nil {
		t.Fatalf("seed vote error = %v", err)
	}

	tests := []struct {
		name        string
		voterID     uint
		positionID  uint
		candidateID uint
		wantErr     error
	}{
		{"valid ballot", voter.ID, position.ID, alice.ID, nil},
		{"second ballot for same position", repeat.ID, position.ID, alice.ID, ErrDuplicateVote},
		{"election not active", voter.ID, endedPosition.ID, endedCandidate.ID, ErrElectionClosed},
		{"candidate from another position", voter.ID, other.ID, alice.ID, ErrCandidateMismatch},
		{"unknown candidate", voter.ID, other.ID, 9999, ErrCandidateMismatch},
		{"unknown position", voter.ID, 9999, dave.ID, ErrPositionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vote, err := env.manager.Vote().CastVote(env.ctx, tt.voterID, tt.positionID, &CastVoteRequest{CandidateID: tt.candidateID})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CastVote() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CastVote() error = %v", err)
			}
			if vote.ID == 0 || vote.CandidateID != tt.candidateID {
				t.Errorf("CastVote() = %+v", vote)
			}
		})
	}

	if got := testutil.CountRows(t, env.db, &models.Vote{}, "position_id = ?", position.ID); got != 2 {
		t.Errorf("votes for position = %d, want 2", got)
	}
	if got := len(env.eventsOfType(events.EventVoteCast)); got != 2 {
		t.Errorf("vote.cast events = %d, want 2", got)
	}
}

func TestVoteService_CastVoteRejectsEmptyCandidate(t *testing.T) {
	env := newTestEnv(t)
	_, position, _, _ := env.seedBallot(t, "Council")
	voter := testutil.CreateUser(t, env.db, "voter", false)

	_, err := env.manager.Vote().CastVote(env.ctx, voter.ID, position.ID, &CastVoteRequest{})
	var validationErrors ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("CastVote() error = %v, want ValidationErrors", err)
	}
}

func TestVoteService_ConcurrentDoubleVote(t *testing.T) {
	env := newTestEnv(t)
	_, position, alice, bob := env.seedBallot(t, "Council")
	voter := testutil.CreateUser(t, env.db, "eager", false)

	const attempts = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		candidate := alice
		if i%2 == 1 {
			candidate = bob
		}
		wg.Add(1)
		go func(candidateID uint) {
			defer wg.Done()
			_, err := env.manager.Vote().CastVote(env.ctx, voter.ID, position.ID, &CastVoteRequest{CandidateID: candidateID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateVote):
				duplicates++
			default:
				t.Errorf("CastVote() unexpected error = %v", err)
			}
		}(candidate.ID)
	}
	wg.Wait()

	if successes != 1 || duplicates != attempts-1 {
		t.Errorf("successes = %d, duplicates = %d", successes, duplicates)
	}
	if got := testutil.CountRows(t, env.db, &models.Vote{}, "voter_id = ?", voter.ID); got != 1 {
		t.Errorf("persisted votes = %d, want 1", got)
	}
}

func TestVoteService_GetMyVotes(t *testing.T) {
	env := newTestEnv(t)
	election, position, alice, _ := env.seedBallot(t, "Council")
	voter := testutil.CreateUser(t, env.db, "voter", false)

	if _, err := env.manager.Vote().CastVote(env.ctx, voter.ID, position.ID, &CastVoteRequest{CandidateID: alice.ID}); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	votes, err := env.manager.Vote().GetMyVotes(env.ctx, voter.ID, &election.ID)
	if err != nil {
		t.Fatalf("GetMyVotes() error = %v", err)
	}
	if len(votes) != 1 || votes[0].CandidateID != alice.ID {
		t.Errorf("GetMyVotes() = %+v", votes)
	}

	missing := uint(9999)
	if _, err := env.manager.Vote().GetMyVotes(env.ctx, voter.ID, &missing); !errors.Is(err, ErrElectionNotFound) {
		t.Errorf("GetMyVotes(unknown) error = %v, want %v", err, ErrElectionNotFound)
	}
}
