package models

import "time"

// Application is a guest's request to join the reserves.
type Application struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	FullName    string     `gorm:"size:128;not null" json:"full_name"`
	Phone       string     `gorm:"size:32" json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     string     `gorm:"size:512" json:"address"`
	Motivation  string     `gorm:"type:text" json:"motivation"`
	Status      string     `gorm:"size:20;not null;index;default:'pending'" json:"status"` // pending | approved | rejected
	ReviewerID  *uint      `json:"reviewer_id"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}
