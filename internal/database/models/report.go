package models

import (
	"time"
)

// Report status values. Any status may move to any other; no ordering is
// enforced.
const (
	StatusPending  = "Pending"
	StatusVerified = "Verified"
	StatusResolved = "Resolved"
)

// Report urgency values, fixed at creation.
const (
	UrgencyNormal = "Normal"
	UrgencyUrgent = "Urgent"
)

// FilterAll is the sentinel that disables a status or urgency predicate.
const FilterAll = "All"

type Report struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	Status   string `gorm:"not null;index:idx_status" json:"status"`
	Urgency  string `gorm:"not null;index:idx_urgency" json:"urgency"`
	Location string `gorm:"index:idx_location" json:"location"`

	// Geocoded once at creation, never refreshed. Both set or both nil;
	// fallback coordinates count as set.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	CreatedAt time.Time `gorm:"not null;index:idx_created_at" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

// ValidStatus reports whether s is one of the three status enum values.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusVerified || s == StatusResolved
}

// ValidUrgency reports whether u is one of the two urgency enum values.
func ValidUrgency(u string) bool {
	return u == UrgencyNormal || u == UrgencyUrgent
}
