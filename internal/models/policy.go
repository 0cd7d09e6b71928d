package models

import "time"

type Policy struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Body          string     `gorm:"type:text" json:"body"`
	Version       int        `gorm:"not null;default:1" json:"version"`
	EffectiveDate time.Time  `json:"effective_date"`
	AcknowledgeBy *time.Time `gorm:"index" json:"acknowledge_by"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedBy     uint       `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Policy) TableName() string {
	return "policies"
}
