// Package store declares the persistence contracts of the service. The
// lifecycle manager, the stats aggregator and the registry only talk to these
// interfaces; mongostore backs them with MongoDB and memstore with process
// memory.
package store

import (
	"context"
	"errors"
	"time"

	"swachh-scan-api-server/internal/models"
)

// Collection names.
const (
	FacilityCollection = "facility"
	StaffCollection    = "staff"
	FeedbackCollection = "feedback"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type FacilityStore interface {
	// CreateFacility inserts f and sets its ID. Returns ErrDuplicate when the
	// code is taken.
	CreateFacility(ctx context.Context, f *models.Facility) error
	GetFacilityByCode(ctx context.Context, code string) (*models.Facility, error)
}

type StaffStore interface {
	CreateStaff(ctx context.Context, s *models.Staff) error
	ListStaff(ctx context.Context) ([]models.Staff, error)
	// GetStaffByID returns ErrNotFound for unknown or malformed ids.
	GetStaffByID(ctx context.Context, id string) (*models.Staff, error)
}

// FeedbackFilter selects feedback records. Empty fields do not constrain.
// Limit <= 0 means no limit.
type FeedbackFilter struct {
	Status       models.FeedbackStatus
	FacilityCode string
	AssignedTo   string
	Limit        int
}

// FeedbackUpdate is a partial update applied atomically to one record.
// Nil pointers leave the stored field untouched.
type FeedbackUpdate struct {
	Status     models.FeedbackStatus
	AssignedTo *string

	BeforePhotoURL *string
	StaffStartLat  *float64
	StaffStartLng  *float64

	AfterPhotoURL    *string
	StaffCompleteLat *float64
	StaffCompleteLng *float64

	// StartedAt overwrites; StartedAtIfUnset only fills an empty started_at.
	StartedAt        *time.Time
	StartedAtIfUnset *time.Time
	ResolvedAt       *time.Time

	UpdatedAt time.Time
}

// StaffResolvedCount is one row of the resolved-per-staff grouping.
type StaffResolvedCount struct {
	StaffID       string
	ResolvedCount int64
}

type FeedbackStore interface {
	InsertFeedback(ctx context.Context, f *models.Feedback) error
	// UpdateFeedback applies upd in a single find-and-update and returns the
	// record after the update. Unknown or malformed ids yield ErrNotFound.
	UpdateFeedback(ctx context.Context, id string, upd FeedbackUpdate) (*models.Feedback, error)
	// ListFeedback returns matches newest first.
	ListFeedback(ctx context.Context, filter FeedbackFilter) ([]models.Feedback, error)
	// CountFeedback counts records with the given status, or all records when
	// status is empty.
	CountFeedback(ctx context.Context, status models.FeedbackStatus) (int64, error)
	// ResolvedCountsByStaff groups resolved, assigned records by assignee,
	// ordered by count descending then staff id ascending, truncated to limit.
	ResolvedCountsByStaff(ctx context.Context, limit int) ([]StaffResolvedCount, error)
}

// Diagnostics describes the reachability of the backing store.
type Diagnostics struct {
	Driver      string
	Database    string
	Connected   bool
	Collections []string
	Err         error
}

// Store bundles every collection together with lifecycle hooks.
type Store interface {
	FacilityStore
	StaffStore
	FeedbackStore

	Diagnose(ctx context.Context) Diagnostics
	Close(ctx context.Context) error
}
