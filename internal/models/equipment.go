package models

import "time"

type Equipment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	SerialNumber string    `gorm:"uniqueIndex;size:128;not null" json:"serial_number"`
	Category     string    `gorm:"size:64;index" json:"category"`
	Condition    string    `gorm:"size:64" json:"condition"`
	Status       string    `gorm:"size:20;not null;index;default:'available'" json:"status"`
	PhotoURL     string    `gorm:"size:512" json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipment"
}
