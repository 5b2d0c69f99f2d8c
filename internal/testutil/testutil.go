package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/config"
	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/pkg"
)

var voterSeq atomic.Int64

// SetupTestDB creates a migrated sqlite database in a temporary directory
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "elections.db")
	db, err := pkg.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path),
	}, nil)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := pkg.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateUser inserts a user; staff users act as admins
func CreateUser(t *testing.T, db *gorm.DB, username string, staff bool) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@campus.test",
		IsStaff:  staff,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// CreateElection inserts an election running from yesterday to tomorrow
func CreateElection(t *testing.T, db *gorm.DB, title string, status models.ElectionStatus) *models.Election {
	t.Helper()

	now := time.Now().UTC()
	election := &models.Election{
		Title:     title,
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   now.Add(24 * time.Hour),
		Status:    status,
	}
	if err := db.Create(election).Error; err != nil {
		t.Fatalf("Failed to create election %s: %v", title, err)
	}
	return election
}

func CreatePosition(t *testing.T, db *gorm.DB, electionID uint, name string) *models.Position {
	t.Helper()

	position := &models.Position{Name: name, ElectionID: electionID, MaxCandidates: 1}
	if err := db.Create(position).Error; err != nil {
		t.Fatalf("Failed to create position %s: %v", name, err)
	}
	return position
}

func CreateCandidate(t *testing.T, db *gorm.DB, positionID uint, name, studentID string) *models.Candidate {
	t.Helper()

	candidate := &models.Candidate{Name: name, StudentID: studentID, PositionID: positionID}
	if err := db.Create(candidate).Error; err != nil {
		t.Fatalf("Failed to create candidate %s: %v", name, err)
	}
	return candidate
}

// CastVotes creates n fresh voters who each vote for the candidate
func CastVotes(t *testing.T, db *gorm.DB, candidate *models.Candidate, n int) []*models.User {
	t.Helper()

	voters := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		voter := CreateUser(t, db, fmt.Sprintf("voter-%d", voterSeq.Add(1)), false)
		vote := &models.Vote{VoterID: voter.ID, PositionID: candidate.PositionID, CandidateID: candidate.ID}
		if err := db.Create(vote).Error; err != nil {
			t.Fatalf("Failed to cast vote: %v", err)
		}
		voters = append(voters, voter)
	}
	return voters
}

// CountRows counts rows of a model matching an optional condition
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}
