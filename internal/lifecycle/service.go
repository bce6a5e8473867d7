// Package lifecycle drives a feedback record from submission to resolution.
// Status only moves forward: open -> in_progress -> resolved. Every write is a
// single atomic store mutation; concurrent writers follow last-writer-wins.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"swachh-scan-api-server/internal/apperr"
	"swachh-scan-api-server/internal/models"
	"swachh-scan-api-server/internal/store"
	"swachh-scan-api-server/internal/validation"
)

const defaultListLimit = 100

type Options struct {
	Logger    *slog.Logger
	Publisher Publisher
	Recorder  Recorder
	// Now defaults to time.Now in UTC.
	Now func() time.Time
	// DefaultListLimit applies when List is called without a limit.
	DefaultListLimit int
	// AllowUnboundedList lets an explicit limit of 0 disable truncation.
	AllowUnboundedList bool
}

type Service struct {
	facilities store.FacilityStore
	feedback   store.FeedbackStore
	logger     *slog.Logger
	publisher  Publisher
	recorder   Recorder
	now        func() time.Time

	defaultLimit   int
	allowUnbounded bool
}

func NewService(facilities store.FacilityStore, feedback store.FeedbackStore, opts Options) *Service {
	s := &Service{
		facilities:     facilities,
		feedback:       feedback,
		logger:         opts.Logger,
		publisher:      opts.Publisher,
		recorder:       opts.Recorder,
		now:            opts.Now,
		defaultLimit:   opts.DefaultListLimit,
		allowUnbounded: opts.AllowUnboundedList,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = defaultListLimit
	}
	return s
}

type SubmitInput struct {
	FacilityCode string   `json:"facility_code" validate:"notblank"`
	Rating       int      `json:"rating" validate:"gte=1,lte=5"`
	Comment      *string  `json:"comment"`
	PhotoURL     *string  `json:"photo_url" validate:"omitempty,http_url"`
	UserLat      *float64 `json:"user_lat" validate:"omitempty,gte=-90,lte=90"`
	UserLng      *float64 `json:"user_lng" validate:"omitempty,gte=-180,lte=180"`
}

type AssignInput struct {
	StaffID string `json:"staff_id" validate:"notblank"`
}

type StartInput struct {
	BeforePhotoURL *string  `json:"before_photo_url"`
	StaffStartLat  *float64 `json:"staff_start_lat"`
	StaffStartLng  *float64 `json:"staff_start_lng"`
}

type ResolveInput struct {
	AfterPhotoURL    *string  `json:"after_photo_url"`
	StaffCompleteLat *float64 `json:"staff_complete_lat"`
	StaffCompleteLng *float64 `json:"staff_complete_lng"`
}

// ListInput filters List. Empty strings do not constrain; a nil Limit means
// the configured default.
type ListInput struct {
	Status       string
	FacilityCode string
	AssignedTo   string
	Limit        *int
}

// Submit records a new open feedback against an existing facility.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Feedback, error) {
	in.FacilityCode = validation.TrimString(in.FacilityCode)
	in.Comment = validation.TrimOptional(in.Comment)
	in.PhotoURL = validation.TrimOptional(in.PhotoURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.facilities.GetFacilityByCode(ctx, in.FacilityCode); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Facility not found for given code")
		}
		return nil, apperr.StoreUnavailable("Failed to look up facility", err)
	}

	now := s.now()
	fb := &models.Feedback{
		FacilityCode: in.FacilityCode,
		Rating:       in.Rating,
		Comment:      in.Comment,
		PhotoURL:     in.PhotoURL,
		UserLat:      in.UserLat,
		UserLng:      in.UserLng,
		Status:       models.StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.feedback.InsertFeedback(ctx, fb); err != nil {
		return nil, apperr.StoreUnavailable("Failed to create feedback", err)
	}

	s.logger.Info("feedback submitted", "feedback_id", fb.ID.Hex(), "facility_code", fb.FacilityCode, "rating", fb.Rating)
	s.emit(EventSubmitted, fb, now)
	return fb, nil
}

// Assign hands the task to staffID and moves it to in_progress. started_at is
// stamped on every call. staffID is not checked against the staff collection.
func (s *Service) Assign(ctx context.Context, id string, in AssignInput) (*models.Feedback, error) {
	in.StaffID = validation.TrimString(in.StaffID)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	fb, err := s.update(ctx, id, store.FeedbackUpdate{
		Status:     models.StatusInProgress,
		AssignedTo: &in.StaffID,
		StartedAt:  &now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback assigned", "feedback_id", id, "staff_id", in.StaffID)
	s.emit(EventAssigned, fb, now)
	return fb, nil
}

// Start records the staff's arrival. Only supplied fields are written and an
// existing started_at is kept.
func (s *Service) Start(ctx context.Context, id string, in StartInput) (*models.Feedback, error) {
	now := s.now()
	fb, err := s.update(ctx, id, store.FeedbackUpdate{
		Status:           models.StatusInProgress,
		BeforePhotoURL:   validation.TrimOptional(in.BeforePhotoURL),
		StaffStartLat:    in.StaffStartLat,
		StaffStartLng:    in.StaffStartLng,
		StartedAtIfUnset: &now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback started", "feedback_id", id)
	s.emit(EventStarted, fb, now)
	return fb, nil
}

// Resolve closes the task whatever its current status. resolved_at is
// stamped on every call.
func (s *Service) Resolve(ctx context.Context, id string, in ResolveInput) (*models.Feedback, error) {
	now := s.now()
	fb, err := s.update(ctx, id, store.FeedbackUpdate{
		Status:           models.StatusResolved,
		AfterPhotoURL:    validation.TrimOptional(in.AfterPhotoURL),
		StaffCompleteLat: in.StaffCompleteLat,
		StaffCompleteLng: in.StaffCompleteLng,
		ResolvedAt:       &now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback resolved", "feedback_id", id)
	s.emit(EventResolved, fb, now)
	return fb, nil
}

// List returns matching feedback, newest first.
func (s *Service) List(ctx context.Context, in ListInput) ([]models.Feedback, error) {
	filter := store.FeedbackFilter{
		FacilityCode: in.FacilityCode,
		AssignedTo:   in.AssignedTo,
		Limit:        s.defaultLimit,
	}

	// Any status is a plain equality filter; an unknown one matches nothing.
	if in.Status != "" {
		filter.Status = models.FeedbackStatus(in.Status)
	}

	if in.Limit != nil {
		switch {
		case *in.Limit < 0:
			return nil, apperr.Validation("limit must be greater than or equal to 0", map[string]string{"limit": "gte"})
		case *in.Limit > 0:
			filter.Limit = *in.Limit
		case s.allowUnbounded:
			filter.Limit = 0
		}
	}

	items, err := s.feedback.ListFeedback(ctx, filter)
	if err != nil {
		return nil, apperr.StoreUnavailable("Failed to list feedback", err)
	}
	return items, nil
}

func (s *Service) update(ctx context.Context, id string, upd store.FeedbackUpdate) (*models.Feedback, error) {
	fb, err := s.feedback.UpdateFeedback(ctx, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Feedback not found")
		}
		return nil, apperr.StoreUnavailable("Failed to update feedback", err)
	}
	return fb, nil
}

func (s *Service) emit(t EventType, fb *models.Feedback, at time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveTransition(t)
	}
	if s.publisher != nil {
		s.publisher.Publish(Event{Type: t, Feedback: *fb, At: at})
	}
}
