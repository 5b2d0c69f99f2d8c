package services

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/testutil"
)

func TestUserService_EnsureUser(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.manager.User().EnsureUser(env.ctx, &Identity{Username: "jdoe", FirstName: "Jane", Email: "jane@campus.test"})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if created.ID == 0 || created.IsStaff || !created.IsActive {
		t.Errorf("EnsureUser() = %+v", created)
	}

	promoted, err := env.manager.User().EnsureUser(env.ctx, &Identity{Username: "jdoe", FirstName: "Jane", Email: "jane@campus.test", IsAdmin: true})
	if err != nil {
		t.Fatalf("EnsureUser(admin) error = %v", err)
	}
	if promoted.ID != created.ID || !promoted.IsStaff {
		t.Errorf("EnsureUser(admin) = %+v", promoted)
	}
	if got := testutil.CountRows(t, env.db, &models.User{}, "username = ?", "jdoe"); got != 1 {
		t.Errorf("users = %d, want 1", got)
	}

	if _, err := env.manager.User().EnsureUser(env.ctx, &Identity{Username: "  "}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("EnsureUser(blank) error = %v, want %v", err, ErrUnauthorized)
	}
}

func TestUserService_SeedAdmin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		username    string
		password    string
		wantCreated bool
		wantErr     error
	}{
		{"first run creates", "root", "s3cret", true, nil},
		{"second run is a no-op", "root", "other", false, nil},
		{"missing password", "admin2", "", false, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := env.manager.User().SeedAdmin(env.ctx, tt.username, tt.username+"@campus.test", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SeedAdmin() error = %v, want %v", err, tt.wantErr)
			}
			if created != tt.wantCreated {
				t.Errorf("SeedAdmin() created = %v, want %v", created, tt.wantCreated)
			}
		})
	}

	var admin models.User
	if err := env.db.Where("username = ?", "root").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !admin.IsStaff {
		t.Error("seeded admin is not staff")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("password hash does not match: %v", err)
	}
}

func TestUserService_SeededAdminKeepsStaffOnLogin(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.manager.User().SeedAdmin(env.ctx, "root", "root@campus.test", "s3cret"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}

	// The identity provider does not mark root as an admin.
	user, err := env.manager.User().EnsureUser(env.ctx, &Identity{Username: "root", FirstName: "Root", Email: "root@campus.test"})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if !user.IsStaff || user.Role() != models.RoleAdmin {
		t.Errorf("EnsureUser() staff = %v role = %v, want admin", user.IsStaff, user.Role())
	}
	if user.FirstName != "Root" {
		t.Errorf("FirstName = %q, want synced from identity", user.FirstName)
	}

	var stored models.User
	if err := env.db.Where("username = ?", "root").First(&stored).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !stored.IsStaff {
		t.Error("stored admin lost staff status")
	}
}

func TestUserService_VerifyPassword(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.manager.User().SeedAdmin(env.ctx, "root", "root@campus.test", "s3cret"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	testutil.CreateUser(t, env.db, "student1", false)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"correct password", "root", "s3cret", nil},
		{"wrong password", "root", "guess", ErrUnauthorized},
		{"unknown user", "ghost", "s3cret", ErrUnauthorized},
		{"user without local password", "student1", "", ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.manager.User().VerifyPassword(env.ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("VerifyPassword() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.Username != tt.username {
				t.Errorf("VerifyPassword() user = %q, want %q", user.Username, tt.username)
			}
		})
	}

	if err := env.db.Model(&models.User{}).Where("username = ?", "root").Update("is_active", false).Error; err != nil {
		t.Fatalf("disable admin: %v", err)
	}
	if _, err := env.manager.User().VerifyPassword(env.ctx, "root", "s3cret"); !errors.Is(err, ErrForbidden) {
		t.Errorf("VerifyPassword(disabled) error = %v, want %v", err, ErrForbidden)
	}
	if _, err := env.manager.User().EnsureUser(env.ctx, &Identity{Username: "root"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("EnsureUser(disabled) error = %v, want %v", err, ErrForbidden)
	}
}

func TestUserService_ListAndCleanProfiles(t *testing.T) {
	env := newTestEnv(t)
	withID := testutil.CreateUser(t, env.db, "withid", false)
	without := testutil.CreateUser(t, env.db, "without", false)
	testutil.CreateUser(t, env.db, "staff", true)

	profiles := []models.UserProfile{
		{UserID: withID.ID, StudentID: "S-1", Department: "Physics"},
		{UserID: without.ID, Department: "History"},
	}
	for i := range profiles {
		if err := env.db.Create(&profiles[i]).Error; err != nil {
			t.Fatalf("create profile: %v", err)
		}
	}

	deleted, err := env.manager.User().CleanEmptyProfiles(env.ctx)
	if err != nil {
		t.Fatalf("CleanEmptyProfiles() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	staff := true
	list, err := env.manager.User().List(env.ctx, repositories.UserFilters{IsStaff: &staff})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list.Total != 1 || list.Users[0].Username != "staff" {
		t.Errorf("List(staff) = %+v", list)
	}

	user, err := env.manager.User().GetByID(env.ctx, withID.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if user.Profile == nil || user.Profile.StudentID != "S-1" {
		t.Errorf("GetByID().Profile = %+v", user.Profile)
	}
	if _, err := env.manager.User().GetByID(env.ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(unknown) error = %v, want %v", err, ErrUserNotFound)
	}
}

func TestDashboardService_GetDashboard(t *testing.T) {
	env := newTestEnv(t)
	_, _, alice, _ := env.seedBallot(t, "Council")
	testutil.CreateElection(t, env.db, "Senate", models.ElectionUpcoming)
	testutil.CastVotes(t, env.db, alice, 3)

	dashboard, err := env.manager.Dashboard().GetDashboard(env.ctx)
	if err != nil {
		t.Fatalf("GetDashboard() error = %v", err)
	}

	overview := dashboard.Overview
	if overview.TotalElections != 2 || overview.ActiveElections != 1 || overview.TotalVotes != 3 || overview.TotalUsers != 3 {
		t.Errorf("Overview = %+v", overview)
	}
	if len(dashboard.RecentVotes) != 3 {
		t.Errorf("RecentVotes = %d, want 3", len(dashboard.RecentVotes))
	}
	if len(dashboard.ElectionStats) != 2 {
		t.Errorf("ElectionStats = %d, want 2", len(dashboard.ElectionStats))
	}
}
