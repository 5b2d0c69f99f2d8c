package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/events"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/election-service/internal/testutil"
	"github.com/SAP-F-2025/election-service/internal/validator"
)

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	manager   ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := testutil.DiscardLogger()
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	publisher := events.NewMockEventPublisher(logger)

	manager := NewDefaultServiceManager(db, repo, logger, validator.New(), publisher)
	if err := manager.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	return &testEnv{
		ctx:       context.Background(),
		db:        db,
		repo:      repo,
		publisher: publisher,
		manager:   manager,
	}
}

// seedBallot creates an active election with one position and two candidates
func (e *testEnv) seedBallot(t *testing.T, title string) (*models.Election, *models.Position, *models.Candidate, *models.Candidate) {
	t.Helper()

	election := testutil.CreateElection(t, e.db, title, models.ElectionActive)
	position := testutil.CreatePosition(t, e.db, election.ID, "President")
	alice := testutil.CreateCandidate(t, e.db, position.ID, "Alice", title+"-A")
	bob := testutil.CreateCandidate(t, e.db, position.ID, "Bob", title+"-B")
	return election, position, alice, bob
}

func (e *testEnv) eventsOfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, ev := range e.publisher.GetPublishedEvents() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
