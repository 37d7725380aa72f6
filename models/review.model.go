package models

import "time"

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"review_id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	ServiceID  uint      `gorm:"not null;index" json:"service_id"`
	ProjectID  uint      `gorm:"not null;index" json:"project_id"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"` // 1–5 rating
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	ReviewDate time.Time `gorm:"not null;index" json:"review_date"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	IsFeatured bool      `gorm:"not null;default:false" json:"is_featured"` // set by moderation only

	Customer Customer `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Service  Service  `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Project  Project  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// ReviewListing is one row of the public review list, joined with the
// customer, service and project it belongs to.
type ReviewListing struct {
	ReviewID         uint      `json:"review_id"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	ReviewDate       time.Time `json:"review_date"`
	IsVerified       bool      `json:"is_verified"`
	IsFeatured       bool      `json:"is_featured"`
	CustomerName     string    `json:"customer_name"`
	AvatarURL        *string   `json:"avatar_url"`
	CustomerVerified bool      `json:"customer_verified"`
	ServiceName      string    `json:"service_name"`
	ServiceIcon      string    `json:"service_icon"`
	ProjectTitle     string    `json:"project_title"`
}

// ReviewSubmission is the body of POST /api/reviews.
type ReviewSubmission struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Service string `json:"service" validate:"required,max=100"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// ReviewConfirmation is returned once a submission is committed.
type ReviewConfirmation struct {
	ReviewID        uint      `json:"review_id"`
	ReviewDate      time.Time `json:"review_date"`
	CustomerName    string    `json:"customer_name"`
	ServiceName     string    `json:"service_name"`
	ResolvedService string    `json:"resolved_service"`
	Rating          int       `json:"rating"`
}
