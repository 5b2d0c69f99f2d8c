package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) UserService {
	return &userService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// EnsureUser maps verified claims onto a local account. Contact fields follow
// the identity provider on every call. Staff status only ever grows here, so a
// seeded admin keeps it when the provider does not carry the admin claim.
func (s *userService) EnsureUser(ctx context.Context, identity *Identity) (*models.User, error) {
	username := strings.TrimSpace(identity.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: identity has no username", ErrUnauthorized)
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, username)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, fmt.Errorf("%w: account %s is disabled", ErrForbidden, username)
		}
		isStaff := user.IsStaff || identity.IsAdmin
		if user.IsStaff == isStaff && user.Email == identity.Email &&
			user.FirstName == identity.FirstName && user.LastName == identity.LastName {
			return user, nil
		}
		user.IsStaff = isStaff
		user.Email = identity.Email
		user.FirstName = identity.FirstName
		user.LastName = identity.LastName
		if err := s.repo.User().Update(ctx, nil, user); err != nil {
			return nil, fmt.Errorf("failed to sync user: %w", err)
		}
		return user, nil

	case repositories.IsNotFoundError(err):
		user = &models.User{
			Username:  username,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			Email:     identity.Email,
			IsStaff:   identity.IsAdmin,
			IsActive:  true,
		}
		if err := s.repo.User().Create(ctx, nil, user); err != nil {
			// a concurrent request provisioned the same user first
			if repositories.IsDuplicateError(err) {
				return s.repo.User().GetByUsername(ctx, nil, username)
			}
			return nil, fmt.Errorf("failed to provision user: %w", err)
		}
		s.logger.Info("Provisioned user from identity", "user_id", user.ID, "username", username, "is_staff", user.IsStaff)
		return user, nil

	default:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "failed to get user")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	filters.Limit = clampLimit(filters.Limit)
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

func (s *userService) SeedAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return false, fmt.Errorf("%w: admin username and password are required", ErrValidationFailed)
	}

	_, err := s.repo.User().GetByUsername(ctx, nil, username)
	if err == nil {
		s.logger.Info("Admin user already exists", "username", username)
		return false, nil
	}
	if !repositories.IsNotFoundError(err) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		IsStaff:      true,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.repo.User().Create(ctx, nil, admin); err != nil {
		if repositories.IsDuplicateError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Admin user created", "user_id", admin.ID, "username", username)
	return true, nil
}

func (s *userService) CleanEmptyProfiles(ctx context.Context) (int64, error) {
	deleted, err := s.repo.User().DeleteProfilesWithEmptyStudentID(ctx, nil)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Deleted profiles without student id", "count", deleted)
	return deleted, nil
}

// VerifyPassword checks a local password, which only the seeded admin has
func (s *userService) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.User().GetByUsername(ctx, nil, strings.TrimSpace(username))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, fmt.Errorf("%w: %s has no local password", ErrUnauthorized, user.Username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account %s is disabled", ErrForbidden, user.Username)
	}
	return user, nil
}
