package postgres

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/testutil"
)

func TestVotePostgreSQL_CreateRejectsSecondVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	election := testutil.CreateElection(t, db, "Senate 2024", models.ElectionActive)
	president := testutil.CreatePosition(t, db, election.ID, "President")
	a := testutil.CreateCandidate(t, db, president.ID, "A", "S-A")
	b := testutil.CreateCandidate(t, db, president.ID, "B", "S-B")
	voter := testutil.CreateUser(t, db, "student1", false)

	if err := repo.Vote().Create(ctx, nil, &models.Vote{VoterID: voter.ID, PositionID: president.ID, CandidateID: a.ID}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	err := repo.Vote().Create(ctx, nil, &models.Vote{VoterID: voter.ID, PositionID: president.ID, CandidateID: b.ID})
	if !repositories.IsDuplicateError(err) {
		t.Fatalf("second Create() error = %v, want duplicate key", err)
	}

	if got := testutil.CountRows(t, db, &models.Vote{}, "position_id = ?", president.ID); got != 1 {
		t.Errorf("votes = %d, want 1", got)
	}

	vote, err := repo.Vote().GetByVoterAndPosition(ctx, nil, voter.ID, president.ID)
	if err != nil {
		t.Fatalf("GetByVoterAndPosition() error = %v", err)
	}
	if vote.CandidateID != a.ID {
		t.Errorf("stored candidate = %d, want %d", vote.CandidateID, a.ID)
	}
}

func TestVotePostgreSQL_TallyByElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	election := testutil.CreateElection(t, db, "Senate 2024", models.ElectionActive)
	president := testutil.CreatePosition(t, db, election.ID, "President")
	secretary := testutil.CreatePosition(t, db, election.ID, "Secretary")
	a := testutil.CreateCandidate(t, db, president.ID, "A", "S-A")
	b := testutil.CreateCandidate(t, db, president.ID, "B", "S-B")
	c := testutil.CreateCandidate(t, db, secretary.ID, "C", "S-C")
	testutil.CastVotes(t, db, a, 3)
	testutil.CastVotes(t, db, b, 1)

	other := testutil.CreateElection(t, db, "Other", models.ElectionActive)
	otherPos := testutil.CreatePosition(t, db, other.ID, "President")
	testutil.CastVotes(t, db, testutil.CreateCandidate(t, db, otherPos.ID, "X", "S-X"), 5)

	tallies, err := repo.Vote().TallyByElection(ctx, nil, election.ID)
	if err != nil {
		t.Fatalf("TallyByElection() error = %v", err)
	}

	got := map[uint]int64{}
	perPosition := map[uint]int64{}
	for _, tally := range tallies {
		got[tally.CandidateID] = tally.Votes
		perPosition[tally.PositionID] += tally.Votes
	}

	want := map[uint]int64{a.ID: 3, b.ID: 1, c.ID: 0}
	if len(got) != len(want) {
		t.Fatalf("tallies = %v, want %v", got, want)
	}
	for id, n := range want {
		if got[id] != n {
			t.Errorf("candidate %d votes = %d, want %d", id, got[id], n)
		}
	}

	for _, position := range []*models.Position{president, secretary} {
		count, err := repo.Vote().CountByPosition(ctx, nil, position.ID)
		if err != nil {
			t.Fatalf("CountByPosition() error = %v", err)
		}
		if perPosition[position.ID] != count {
			t.Errorf("position %s: tally sum %d != vote rows %d", position.Name, perPosition[position.ID], count)
		}
	}
}

func TestVotePostgreSQL_ListByVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	first := testutil.CreateElection(t, db, "First", models.ElectionActive)
	second := testutil.CreateElection(t, db, "Second", models.ElectionActive)
	p1 := testutil.CreatePosition(t, db, first.ID, "President")
	p2 := testutil.CreatePosition(t, db, second.ID, "President")
	c1 := testutil.CreateCandidate(t, db, p1.ID, "A", "S-A")
	c2 := testutil.CreateCandidate(t, db, p2.ID, "B", "S-B")
	voter := testutil.CreateUser(t, db, "student1", false)

	for _, v := range []*models.Vote{
		{VoterID: voter.ID, PositionID: p1.ID, CandidateID: c1.ID},
		{VoterID: voter.ID, PositionID: p2.ID, CandidateID: c2.ID},
	} {
		if err := repo.Vote().Create(ctx, nil, v); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.Vote().ListByVoter(ctx, nil, voter.ID, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByVoter(all) = %d, err %v", len(all), err)
	}

	scoped, err := repo.Vote().ListByVoter(ctx, nil, voter.ID, &second.ID)
	if err != nil {
		t.Fatalf("ListByVoter(scoped) error = %v", err)
	}
	if len(scoped) != 1 || scoped[0].Candidate == nil || scoped[0].Candidate.Name != "B" {
		t.Errorf("scoped votes = %+v", scoped)
	}
}

func TestVotePostgreSQL_CandidatePositionIsPinnedByVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	election := testutil.CreateElection(t, db, "Senate 2024", models.ElectionActive)
	president := testutil.CreatePosition(t, db, election.ID, "President")
	secretary := testutil.CreatePosition(t, db, election.ID, "Secretary")
	a := testutil.CreateCandidate(t, db, president.ID, "A", "S-A")
	idle := testutil.CreateCandidate(t, db, president.ID, "Idle", "S-I")
	testutil.CastVotes(t, db, a, 2)

	moved := *a
	moved.PositionID = secretary.ID
	err := repo.Candidate().Update(ctx, nil, &moved)
	if !repositories.IsForeignKeyError(err) {
		t.Fatalf("Update() moving a voted candidate error = %v, want foreign key violation", err)
	}

	stored, err := repo.Candidate().GetByID(ctx, nil, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.PositionID != president.ID {
		t.Errorf("candidate position = %d, want %d", stored.PositionID, president.ID)
	}

	tallies, err := repo.Vote().TallyByElection(ctx, nil, election.ID)
	if err != nil {
		t.Fatalf("TallyByElection() error = %v", err)
	}
	var presidentVotes int64
	for _, tally := range tallies {
		if tally.PositionID == president.ID {
			presidentVotes += tally.Votes
		}
	}
	if got := testutil.CountRows(t, db, &models.Vote{}, "position_id = ?", president.ID); got != presidentVotes {
		t.Errorf("president tally sum %d != vote rows %d", presidentVotes, got)
	}

	// Candidates without votes can still move.
	idle.PositionID = secretary.ID
	if err := repo.Candidate().Update(ctx, nil, idle); err != nil {
		t.Errorf("Update() moving an unvoted candidate error = %v", err)
	}
}

func TestVotePostgreSQL_CreateRejectsCandidateFromOtherPosition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	election := testutil.CreateElection(t, db, "Senate 2024", models.ElectionActive)
	president := testutil.CreatePosition(t, db, election.ID, "President")
	secretary := testutil.CreatePosition(t, db, election.ID, "Secretary")
	c := testutil.CreateCandidate(t, db, secretary.ID, "C", "S-C")
	voter := testutil.CreateUser(t, db, "student1", false)

	err := repo.Vote().Create(ctx, nil, &models.Vote{VoterID: voter.ID, PositionID: president.ID, CandidateID: c.ID})
	if !repositories.IsForeignKeyError(err) {
		t.Fatalf("Create() error = %v, want foreign key violation", err)
	}
	if got := testutil.CountRows(t, db, &models.Vote{}, ""); got != 0 {
		t.Errorf("votes = %d, want 0", got)
	}
}
