package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Omit("Profile").Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).
		Preload("Profile").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	result := u.getDB(tx).WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"email":         user.Email,
		"is_staff":      user.IsStaff,
		"is_active":     user.IsActive,
		"password_hash": user.PasswordHash,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update user: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})
	if filters.IsStaff != nil {
		query = query.Where("is_staff = ?", *filters.IsStaff)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = applyPagination(query.Order("username ASC"), filters.Limit, filters.Offset)

	var users []*models.User
	if err := query.Preload("Profile").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (u *UserPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := u.getDB(tx).WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpsertProfile creates the user's profile or overwrites the existing one
func (u *UserPostgreSQL) UpsertProfile(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error {
	db := u.getDB(tx).WithContext(ctx)

	var existing models.UserProfile
	err := db.Where("user_id = ?", profile.UserID).First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"roll_number": profile.RollNumber,
			"student_id":  profile.StudentID,
			"department":  profile.Department,
			"year":        profile.Year,
		}).Error; err != nil {
			return fmt.Errorf("failed to update user profile: %w", err)
		}
		return nil
	case repositories.IsNotFoundError(err):
		if err := db.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create user profile: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to get user profile: %w", err)
	}
}

func (u *UserPostgreSQL) DeleteProfilesWithEmptyStudentID(ctx context.Context, tx *gorm.DB) (int64, error) {
	result := u.getDB(tx).WithContext(ctx).
		Where("student_id = ? OR student_id IS NULL", "").
		Delete(&models.UserProfile{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete empty profiles: %w", result.Error)
	}
	return result.RowsAffected, nil
}
