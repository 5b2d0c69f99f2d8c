package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User is a local account; voters are provisioned from verified identity claims
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;size:150"`
	FirstName    string `json:"first_name" gorm:"size:150"`
	LastName     string `json:"last_name" gorm:"size:150"`
	Email        string `json:"email" gorm:"size:254;index"`
	IsStaff      bool   `json:"is_staff" gorm:"not null;default:false"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`
	PasswordHash string `json:"-" gorm:"size:255"`

	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// Role derives the authorization role from the staff flag
func (u *User) Role() UserRole {
	if u.IsStaff {
		return RoleAdmin
	}
	return RoleStudent
}

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

type UserProfile struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	RollNumber string `json:"roll_number" gorm:"size:50"`
	StudentID  string `json:"student_id" gorm:"size:50;index"`
	Department string `json:"department" gorm:"size:100;index"`
	Year       int    `json:"year"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
