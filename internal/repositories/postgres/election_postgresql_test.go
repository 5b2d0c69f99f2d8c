package postgres

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/election-service/internal/cache"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/testutil"
)

func TestElectionPostgreSQL_DeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	doomed := testutil.CreateElection(t, db, "Senate 2024", models.ElectionActive)
	president := testutil.CreatePosition(t, db, doomed.ID, "President")
	alice := testutil.CreateCandidate(t, db, president.ID, "Alice", "S-001")
	testutil.CastVotes(t, db, alice, 2)
	if err := db.Create(&models.ResultSnapshot{ElectionID: doomed.ID, Payload: []byte(`{}`)}).Error; err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	kept := testutil.CreateElection(t, db, "Council 2024", models.ElectionActive)
	treasurer := testutil.CreatePosition(t, db, kept.ID, "Treasurer")
	bob := testutil.CreateCandidate(t, db, treasurer.ID, "Bob", "S-002")
	testutil.CastVotes(t, db, bob, 1)

	if err := repo.Election().Delete(ctx, nil, doomed.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	checks := []struct {
		name  string
		model interface{}
		want  int64
	}{
		{"elections", &models.Election{}, 1},
		{"positions", &models.Position{}, 1},
		{"candidates", &models.Candidate{}, 1},
		{"votes", &models.Vote{}, 1},
		{"snapshots", &models.ResultSnapshot{}, 0},
	}
	for _, c := range checks {
		if got := testutil.CountRows(t, db, c.model, ""); got != c.want {
			t.Errorf("%s remaining = %d, want %d", c.name, got, c.want)
		}
	}

	if err := repo.Election().Delete(ctx, nil, doomed.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestElectionPostgreSQL_GetByIDWithDetailsOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})

	election := testutil.CreateElection(t, db, "Senate 2024", models.ElectionActive)
	vp := testutil.CreatePosition(t, db, election.ID, "Vice President")
	president := testutil.CreatePosition(t, db, election.ID, "President")
	testutil.CreateCandidate(t, db, president.ID, "Zed", "S-010")
	testutil.CreateCandidate(t, db, president.ID, "Amy", "S-011")
	testutil.CreateCandidate(t, db, vp.ID, "Kim", "S-012")

	got, err := repo.Election().GetByIDWithDetails(context.Background(), nil, election.ID)
	if err != nil {
		t.Fatalf("GetByIDWithDetails() error = %v", err)
	}

	if len(got.Positions) != 2 || got.Positions[0].Name != "President" || got.Positions[1].Name != "Vice President" {
		t.Fatalf("positions not ordered by name: %+v", got.Positions)
	}
	if names := []string{got.Positions[0].Candidates[0].Name, got.Positions[0].Candidates[1].Name}; names[0] != "Amy" || names[1] != "Zed" {
		t.Errorf("candidates = %v, want [Amy Zed]", names)
	}
	if got.PositionCount != 2 || got.CandidateCount != 3 {
		t.Errorf("counts = %d/%d, want 2/3", got.PositionCount, got.CandidateCount)
	}
}

func TestElectionPostgreSQL_GetByIDUsesCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client})
	ctx := context.Background()

	election := testutil.CreateElection(t, db, "Senate 2024", models.ElectionUpcoming)

	first, err := repo.Election().GetByID(ctx, nil, election.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if first.Status != models.ElectionUpcoming {
		t.Fatalf("Status = %s", first.Status)
	}

	if err := repo.Election().UpdateStatus(ctx, nil, election.ID, models.ElectionActive); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	cached, _ := repo.Election().GetByID(ctx, nil, election.ID)
	if cached.Status != models.ElectionUpcoming {
		t.Errorf("expected cached status before invalidation, got %s", cached.Status)
	}

	// reads inside a transaction bypass the cache
	inTx, err := repo.Election().GetByID(ctx, db, election.ID)
	if err != nil {
		t.Fatalf("GetByID(tx) error = %v", err)
	}
	if inTx.Status != models.ElectionActive {
		t.Errorf("tx read status = %s, want active", inTx.Status)
	}

	cache.InvalidateElectionCache(ctx, repo.Cache(), election.ID)

	fresh, _ := repo.Election().GetByID(ctx, nil, election.ID)
	if fresh.Status != models.ElectionActive {
		t.Errorf("status after invalidation = %s, want active", fresh.Status)
	}
}

func TestElectionPostgreSQL_ListAndCountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})
	ctx := context.Background()

	testutil.CreateElection(t, db, "Alpha Vote", models.ElectionActive)
	testutil.CreateElection(t, db, "Beta Vote", models.ElectionActive)
	testutil.CreateElection(t, db, "Gamma Poll", models.ElectionEnded)

	active := models.ElectionActive
	elections, total, err := repo.Election().List(ctx, nil, repositories.ElectionFilters{Status: &active, SortBy: "title", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(elections) != 2 || elections[0].Title != "Alpha Vote" {
		t.Errorf("List() = %d rows (total %d), first %q", len(elections), total, elections[0].Title)
	}

	_, total, err = repo.Election().List(ctx, nil, repositories.ElectionFilters{Search: "POLL"})
	if err != nil || total != 1 {
		t.Errorf("search total = %d, err = %v, want 1", total, err)
	}

	counts, err := repo.Election().CountByStatus(ctx, nil)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	want := map[models.ElectionStatus]int64{models.ElectionUpcoming: 0, models.ElectionActive: 2, models.ElectionEnded: 1}
	for status, n := range want {
		if counts[status] != n {
			t.Errorf("counts[%s] = %d, want %d", status, counts[status], n)
		}
	}
}
