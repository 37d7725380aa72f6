package models

import "time"

// Customer is created on the first review submitted under an email and
// reused for every later one.
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"customer_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	AvatarURL  *string   `gorm:"size:500" json:"avatar_url"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
