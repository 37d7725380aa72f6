package models

type Service struct {
	ID   uint   `gorm:"primaryKey" json:"service_id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Icon string `gorm:"size:50;not null;default:''" json:"icon"`
}
