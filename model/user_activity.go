package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType represents the type of user activity
type ActivityType string

const (
	ActivityTypeSignIn   ActivityType = "signin"
	ActivityTypeSignUp   ActivityType = "signup"
	ActivityTypeSignOut  ActivityType = "signout"
	ActivityTypeChatTurn ActivityType = "chat_turn"
)

// UserActivity tracks user activity for analytics. Chat turns record the
// resolved intent only, never the message text.
type UserActivity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index:idx_user_activity" json:"user_id"`
	ActivityType ActivityType   `gorm:"type:varchar(50);not null;index:idx_activity_type" json:"activity_type"`
	Intent       string         `gorm:"type:varchar(50);index" json:"intent,omitempty"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress    string         `gorm:"type:varchar(45)" json:"ip_address"`
	Duration     int64          `gorm:"default:0" json:"duration_ms"`
	CreatedAt    time.Time      `gorm:"index:idx_created_at" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for UserActivity
func (UserActivity) TableName() string {
	return "user_activities"
}
