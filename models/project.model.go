package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

// Project links a customer to a service. Review submission creates one per
// review so the review has a completed project to point at.
type Project struct {
	ID         uint           `gorm:"primaryKey" json:"project_id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	ServiceID  uint           `gorm:"not null;index" json:"service_id"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	Status     ProjectStatus  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	StartDate  datatypes.Date `json:"start_date"`
	EndDate    datatypes.Date `json:"end_date"`
	CreatedAt  time.Time      `json:"created_at"`

	Customer Customer `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Service  Service  `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
