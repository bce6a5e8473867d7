// Package stats computes the dashboard snapshot: feedback counts per status
// and the staff leaderboard. Nothing is cached; every call re-queries.
package stats

import (
	"context"
	"errors"

	"swachh-scan-api-server/internal/apperr"
	"swachh-scan-api-server/internal/models"
	"swachh-scan-api-server/internal/store"
)

const defaultLeaderboardSize = 10

type Aggregator struct {
	feedback        store.FeedbackStore
	staff           store.StaffStore
	leaderboardSize int
}

func NewAggregator(feedback store.FeedbackStore, staff store.StaffStore, leaderboardSize int) *Aggregator {
	if leaderboardSize <= 0 {
		leaderboardSize = defaultLeaderboardSize
	}
	return &Aggregator{feedback: feedback, staff: staff, leaderboardSize: leaderboardSize}
}

// Counts returns the total and per-status counts, each queried on its own.
func (a *Aggregator) Counts(ctx context.Context) (models.StatusCounts, error) {
	var counts models.StatusCounts
	targets := []struct {
		status models.FeedbackStatus
		dst    *int64
	}{
		{"", &counts.Total},
		{models.StatusOpen, &counts.Open},
		{models.StatusInProgress, &counts.InProgress},
		{models.StatusResolved, &counts.Resolved},
	}
	for _, target := range targets {
		n, err := a.feedback.CountFeedback(ctx, target.status)
		if err != nil {
			return models.StatusCounts{}, apperr.StoreUnavailable("Failed to count feedback", err)
		}
		*target.dst = n
	}
	return counts, nil
}

// Leaderboard ranks staff by resolved tasks, ties broken by staff id. A
// topN <= 0 uses the configured size. Entries whose staff record is gone are
// kept with a nil name.
func (a *Aggregator) Leaderboard(ctx context.Context, topN int) ([]models.LeaderboardEntry, error) {
	if topN <= 0 {
		topN = a.leaderboardSize
	}

	rows, err := a.feedback.ResolvedCountsByStaff(ctx, topN)
	if err != nil {
		return nil, apperr.StoreUnavailable("Failed to aggregate leaderboard", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.LeaderboardEntry{StaffID: row.StaffID, ResolvedCount: row.ResolvedCount}

		member, err := a.staff.GetStaffByID(ctx, row.StaffID)
		switch {
		case err == nil:
			name := member.Name
			entry.StaffName = &name
		case !errors.Is(err, store.ErrNotFound):
			return nil, apperr.StoreUnavailable("Failed to look up staff", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Snapshot bundles Counts and Leaderboard for the dashboard.
func (a *Aggregator) Snapshot(ctx context.Context, topN int) (models.DashboardStats, error) {
	counts, err := a.Counts(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	leaderboard, err := a.Leaderboard(ctx, topN)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return models.DashboardStats{Counts: counts, Leaderboard: leaderboard}, nil
}
