package models

// StatusCounts is a point-in-time count of feedback per status.
// The per-status counts are taken independently and need not add up to Total.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
}

// LeaderboardEntry ranks one staff member by resolved tasks.
// StaffName is nil when the staff record no longer exists.
type LeaderboardEntry struct {
	StaffID       string  `json:"staff_id"`
	StaffName     *string `json:"staff_name"`
	ResolvedCount int64   `json:"resolved_count"`
}

// DashboardStats is the payload of the stats endpoint.
type DashboardStats struct {
	Counts      StatusCounts       `json:"counts"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
