package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
)

// UserRepository manages local accounts and their student profiles
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	// GetByID preloads the profile
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// Profiles
	UpsertProfile(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error
	DeleteProfilesWithEmptyStudentID(ctx context.Context, tx *gorm.DB) (int64, error)
}
