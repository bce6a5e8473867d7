// server/internal/database/seeder.go
package database

import (
	"context"
	"log/slog"

	"swachh-scan-api-server/internal/apperr"
	"swachh-scan-api-server/internal/registry"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// DemoFacilities and DemoStaff are inserted by the seed command.
var DemoFacilities = []registry.FacilityInput{
	{
		Code:    "SBM-DEMO-001",
		Name:    "Central Market Public Toilet",
		Address: strPtr("Central Market, Gate 2"),
		Lat:     floatPtr(28.6139),
		Lng:     floatPtr(77.2090),
		Ward:    strPtr("Ward 12"),
	},
	{
		Code: "SBM-DEMO-002",
		Name: "Bus Stand Community Toilet",
		Ward: strPtr("Ward 7"),
	},
}

var DemoStaff = []registry.StaffInput{
	{Name: "Demo Cleaner", Phone: strPtr("9000000001"), EmployeeID: strPtr("EMP-001"), Ward: strPtr("Ward 12")},
	{Name: "Demo Supervisor", Phone: strPtr("9000000002"), EmployeeID: strPtr("EMP-002"), Ward: strPtr("Ward 7")},
}

type SeedResult struct {
	FacilitiesCreated int
	StaffCreated      int
}

// SeedDemoData inserts the demo facilities and staff that are not there yet.
// Facilities are matched by code, staff by employee id, so running it twice
// is harmless.
func SeedDemoData(ctx context.Context, reg *registry.Service, logger *slog.Logger) (SeedResult, error) {
	var result SeedResult

	for _, in := range DemoFacilities {
		_, err := reg.GetFacilityByCode(ctx, in.Code)
		if err == nil {
			logger.Info("Facility already exists. Seeding skipped.", "code", in.Code)
			continue
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return result, err
		}

		if _, err := reg.CreateFacility(ctx, in); err != nil {
			// Lost a race with another seeder.
			if apperr.Is(err, apperr.KindConflict) {
				continue
			}
			return result, err
		}
		result.FacilitiesCreated++
	}

	existing, err := reg.ListStaff(ctx)
	if err != nil {
		return result, err
	}
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		if m.EmployeeID != nil {
			known[*m.EmployeeID] = true
		}
	}

	for _, in := range DemoStaff {
		if in.EmployeeID != nil && known[*in.EmployeeID] {
			logger.Info("Staff member already exists. Seeding skipped.", "employee_id", *in.EmployeeID)
			continue
		}
		if _, err := reg.CreateStaff(ctx, in); err != nil {
			return result, err
		}
		result.StaffCreated++
	}

	logger.Info("Demo data seeded successfully.", "facilities", result.FacilitiesCreated, "staff", result.StaffCreated)
	return result, nil
}
