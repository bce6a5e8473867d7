package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackStatus is the lifecycle state of a feedback task.
type FeedbackStatus string

const (
	StatusOpen       FeedbackStatus = "open"
	StatusInProgress FeedbackStatus = "in_progress"
	StatusResolved   FeedbackStatus = "resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []FeedbackStatus{StatusOpen, StatusInProgress, StatusResolved}

// Valid reports whether s is one of the known statuses.
func (s FeedbackStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Feedback is a citizen report against a facility, tracked as a cleaning task
// until it is resolved. FacilityCode and AssignedTo are plain identifiers,
// never owning links.
type Feedback struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FacilityCode string             `bson:"facility_code" json:"facility_code"`
	Rating       int                `bson:"rating" json:"rating"`
	Comment      *string            `bson:"comment" json:"comment"`
	PhotoURL     *string            `bson:"photo_url" json:"photo_url"`
	UserLat      *float64           `bson:"user_lat" json:"user_lat"`
	UserLng      *float64           `bson:"user_lng" json:"user_lng"`
	Status       FeedbackStatus     `bson:"status" json:"status"`
	AssignedTo   *string            `bson:"assigned_to" json:"assigned_to"`

	// Set on start.
	BeforePhotoURL *string    `bson:"before_photo_url" json:"before_photo_url"`
	StaffStartLat  *float64   `bson:"staff_start_lat" json:"staff_start_lat"`
	StaffStartLng  *float64   `bson:"staff_start_lng" json:"staff_start_lng"`
	StartedAt      *time.Time `bson:"started_at" json:"started_at"`

	// Set on resolve.
	AfterPhotoURL    *string    `bson:"after_photo_url" json:"after_photo_url"`
	StaffCompleteLat *float64   `bson:"staff_complete_lat" json:"staff_complete_lat"`
	StaffCompleteLng *float64   `bson:"staff_complete_lng" json:"staff_complete_lng"`
	ResolvedAt       *time.Time `bson:"resolved_at" json:"resolved_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
