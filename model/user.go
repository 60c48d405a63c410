package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is the campus profile a user signs up with.
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleTeacher UserRole = "teacher"
)

// Valid reports whether r is one of the supported profile roles.
func (r UserRole) Valid() bool {
	return r == UserRoleStudent || r == UserRoleTeacher
}

// User represents a registered campus user
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string         `gorm:"type:varchar(100);not null" json:"full_name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'student'" json:"role"` // student, teacher
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	Activities     []UserActivity      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
