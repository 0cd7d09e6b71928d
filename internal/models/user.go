package models

import (
	"time"

	"reservehub/internal/domain"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:128;not null;default:''" json:"name"`
	Phone        string    `gorm:"size:32" json:"phone"`
	BadgeNumber  *string   `gorm:"uniqueIndex;size:32" json:"badge_number"` // nil until sworn in (avoids duplicate '' on unique index)
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:20;not null;index;default:'guest'" json:"role"` // admin | member | guest
	Status       string    `gorm:"size:20;not null;index;default:'active'" json:"status"`
	FCMToken     string    `gorm:"size:512" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool  { return u.Role == domain.RoleAdmin }
func (u *User) IsMember() bool { return u.Role == domain.RoleMember || u.Role == domain.RoleAdmin }
func (u *User) IsActive() bool { return u.Status == domain.UserStatusActive }
