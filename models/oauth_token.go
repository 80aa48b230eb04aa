package models

import (
	"time"
)

// OAuthToken holds a doctor's Google Calendar credentials. Access and
// refresh tokens are never exposed in JSON.
type OAuthToken struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	DoctorID     uint      `json:"doctor_id" gorm:"uniqueIndex"`
	Provider     string    `json:"provider" gorm:"size:50;default:google"`
	AccessToken  string    `json:"-" gorm:"size:4096"`
	RefreshToken string    `json:"-" gorm:"size:4096"`
	TokenType    string    `json:"token_type" gorm:"size:50"`
	Expiry       time.Time `json:"expiry"`
	Authorized   bool      `json:"authorized"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
