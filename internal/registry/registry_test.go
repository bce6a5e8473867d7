package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh-scan-api-server/internal/apperr"
	"swachh-scan-api-server/internal/store/memstore"
)

func newService() (*Service, *memstore.Store) {
	st := memstore.New()
	return NewService(st, st, slog.New(slog.NewTextHandler(io.Discard, nil))), st
}

func ptr[T any](v T) *T { return &v }

func TestCreateFacilityDefaults(t *testing.T) {
	svc, _ := newService()
	f, err := svc.CreateFacility(context.Background(), FacilityInput{Code: " TB-1 ", Name: "Toilet Block A", Ward: ptr(" ")})
	require.NoError(t, err)

	assert.Equal(t, "TB-1", f.Code)
	assert.True(t, f.IsActive)
	assert.Nil(t, f.Ward)
	assert.False(t, f.CreatedAt.IsZero())
}

func TestCreateFacilityDuplicateCode(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateFacility(ctx, FacilityInput{Code: "TB-1", Name: "Original", Lat: ptr(12.97)})
	require.NoError(t, err)

	_, err = svc.CreateFacility(ctx, FacilityInput{Code: "TB-1", Name: "Second"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	existing, err := svc.GetFacilityByCode(ctx, "TB-1")
	require.NoError(t, err)
	assert.Equal(t, "Original", existing.Name)
	assert.Equal(t, 12.97, *existing.Lat)
}

func TestCreateFacilityValidation(t *testing.T) {
	svc, _ := newService()
	_, err := svc.CreateFacility(context.Background(), FacilityInput{Code: "", Name: "x"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.CreateFacility(context.Background(), FacilityInput{Code: "TB-9", Name: "x", Lng: ptr(200.0)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetFacilityByCodeNotFound(t *testing.T) {
	svc, _ := newService()
	_, err := svc.GetFacilityByCode(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStaff(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	empty, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	m, err := svc.CreateStaff(ctx, StaffInput{Name: "Asha", EmployeeID: ptr("E-17"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, m.IsActive)
	assert.False(t, m.ID.IsZero())

	_, err = svc.CreateStaff(ctx, StaffInput{Name: " "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	all, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "E-17", *all[0].EmployeeID)
}
