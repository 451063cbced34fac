package models

import (
	"time"

	"gorm.io/gorm"
)

// Compliance areas. Bar logs are recorded by bartenders and managers,
// kitchen logs by chefs and managers.
const (
	AreaBar     = "bar"
	AreaKitchen = "kitchen"
)

// TemperatureLog is a HACCP temperature reading for one piece of equipment.
// The acceptable band is stored with the reading so later band changes do
// not rewrite history.
type TemperatureLog struct {
	gorm.Model
	Area         string    `gorm:"type:varchar(20);not null" json:"area"`
	Equipment    string    `gorm:"not null" json:"equipment"`
	TemperatureC float64   `json:"temperature_c"`
	MinC         float64   `json:"min_c"`
	MaxC         float64   `json:"max_c"`
	OutOfRange   bool      `json:"out_of_range"`
	Note         string    `gorm:"type:text" json:"note"`
	RecordedBy   uint      `json:"recorded_by"`
	RecordedAt   time.Time `gorm:"not null" json:"recorded_at"`
	Organisation string    `gorm:"type:varchar(200)" json:"organisation"`
}

// ChecklistEntry is one completed (or skipped) item of the daily bar or
// kitchen checklist.
type ChecklistEntry struct {
	gorm.Model
	Area         string    `gorm:"type:varchar(20);not null" json:"area"`
	Item         string    `gorm:"not null" json:"item"`
	Completed    bool      `json:"completed"`
	Note         string    `gorm:"type:text" json:"note"`
	CompletedBy  uint      `json:"completed_by"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
	Organisation string    `gorm:"type:varchar(200)" json:"organisation"`
}
