package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID      uint              `gorm:"primaryKey" json:"id"`
	UserID  uint              `gorm:"not null;index" json:"user_id"`
	Type    string            `gorm:"size:50;not null;index" json:"type"`
	Message string            `gorm:"type:text;not null" json:"message"`
	URL     string            `gorm:"size:512" json:"url,omitempty"`
	Data    datatypes.JSONMap `json:"data,omitempty"`
	IsRead  bool              `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt  *time.Time        `json:"read_at"`
	// ReminderKey is set only on reminders: "<type>:<entity id>:<user id>:<occurrence unix>".
	// The unique index makes a second reminder for the same occurrence fail at the store.
	ReminderKey *string   `gorm:"uniqueIndex;size:191" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
