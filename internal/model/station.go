package model

import "time"

type Station struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	Region       string    `gorm:"size:128" json:"region"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
