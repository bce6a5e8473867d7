// Package registry registers facilities and staff.
package registry

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

type FacilityInput struct {
	Code     string   `json:"code" validate:"notblank"`
	Name     string   `json:"name" validate:"notblank"`
	Address  *string  `json:"address"`
	Lat      *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng      *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Ward     *string  `json:"ward"`
	IsActive *bool    `json:"is_active"`
}

type StaffInput struct {
	Name       string  `json:"name" validate:"notblank"`
	Phone      *string `json:"phone"`
	EmployeeID *string `json:"employee_id"`
	Ward       *string `json:"ward"`
	IsActive   *bool   `json:"is_active"`
}

type Service struct {
	facilities store.FacilityStore
	staff      store.StaffStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(facilities store.FacilityStore, staff store.StaffStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		facilities: facilities,
		staff:      staff,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateFacility registers a facility. A taken code is a Conflict and leaves
// the existing facility untouched.
func (s *Service) CreateFacility(ctx context.Context, in FacilityInput) (*models.Facility, error) {
	in.Code = validation.TrimString(in.Code)
	in.Name = validation.TrimString(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	f := &models.Facility{
		Code:      in.Code,
		Name:      in.Name,
		Address:   validation.TrimOptional(in.Address),
		Lat:       in.Lat,
		Lng:       in.Lng,
		Ward:      validation.TrimOptional(in.Ward),
		IsActive:  validation.BoolOrDefault(in.IsActive, true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.facilities.CreateFacility(ctx, f); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Facility code already exists")
		}
		return nil, apperr.StoreUnavailable("Failed to create facility", err)
	}

	s.logger.Info("facility registered", "facility_id", f.ID.Hex(), "code", f.Code)
	return f, nil
}

func (s *Service) GetFacilityByCode(ctx context.Context, code string) (*models.Facility, error) {
	f, err := s.facilities.GetFacilityByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Facility not found")
		}
		return nil, apperr.StoreUnavailable("Failed to retrieve facility", err)
	}
	return f, nil
}

func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (*models.Staff, error) {
	in.Name = validation.TrimString(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	m := &models.Staff{
		Name:       in.Name,
		Phone:      validation.TrimOptional(in.Phone),
		EmployeeID: validation.TrimOptional(in.EmployeeID),
		Ward:       validation.TrimOptional(in.Ward),
		IsActive:   validation.BoolOrDefault(in.IsActive, true),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.staff.CreateStaff(ctx, m); err != nil {
		return nil, apperr.StoreUnavailable("Failed to create staff", err)
	}

	s.logger.Info("staff registered", "staff_id", m.ID.Hex())
	return m, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]models.Staff, error) {
	staff, err := s.staff.ListStaff(ctx)
	if err != nil {
		return nil, apperr.StoreUnavailable("Failed to list staff", err)
	}
	if staff == nil {
		staff = []models.Staff{}
	}
	return staff, nil
}
