// Package memstore is an in-process implementation of store.Store. It backs
// the service tests and the "memory" store driver used for local demos.
package memstore

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"swachh-scan-api-server/internal/models"
	"swachh-scan-api-server/internal/store"
)

type feedbackRow struct {
	seq uint64
	doc models.Feedback
}

// Store keeps every collection in maps guarded by one RWMutex, which gives
// each write the same all-or-nothing behaviour as a single-document update.
type Store struct {
	mu         sync.RWMutex
	facilities map[string]models.Facility // by code
	staff      map[primitive.ObjectID]models.Staff
	staffOrder []primitive.ObjectID
	feedback   map[primitive.ObjectID]*feedbackRow
	seq        uint64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		facilities: make(map[string]models.Facility),
		staff:      make(map[primitive.ObjectID]models.Staff),
		feedback:   make(map[primitive.ObjectID]*feedbackRow),
	}
}

func (s *Store) CreateFacility(ctx context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.facilities[f.Code]; exists {
		return store.ErrDuplicate
	}
	f.ID = primitive.NewObjectID()
	s.facilities[f.Code] = cloneFacility(*f)
	return nil
}

func (s *Store) GetFacilityByCode(ctx context.Context, code string) (*models.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.facilities[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneFacility(f)
	return &out, nil
}

func (s *Store) CreateStaff(ctx context.Context, m *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = primitive.NewObjectID()
	s.staff[m.ID] = cloneStaff(*m)
	s.staffOrder = append(s.staffOrder, m.ID)
	return nil
}

func (s *Store) ListStaff(ctx context.Context) ([]models.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Staff, 0, len(s.staffOrder))
	for _, id := range s.staffOrder {
		out = append(out, cloneStaff(s.staff[id]))
	}
	return out, nil
}

func (s *Store) GetStaffByID(ctx context.Context, id string) (*models.Staff, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.staff[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneStaff(m)
	return &out, nil
}

func (s *Store) InsertFeedback(ctx context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = primitive.NewObjectID()
	s.seq++
	s.feedback[f.ID] = &feedbackRow{seq: s.seq, doc: cloneFeedback(*f)}
	return nil
}

func (s *Store) UpdateFeedback(ctx context.Context, id string, upd store.FeedbackUpdate) (*models.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.feedback[oid]
	if !ok {
		return nil, store.ErrNotFound
	}

	doc := &row.doc
	if upd.Status != "" {
		doc.Status = upd.Status
	}
	if upd.AssignedTo != nil {
		doc.AssignedTo = clonePtr(upd.AssignedTo)
	}
	if upd.BeforePhotoURL != nil {
		doc.BeforePhotoURL = clonePtr(upd.BeforePhotoURL)
	}
	if upd.StaffStartLat != nil {
		doc.StaffStartLat = clonePtr(upd.StaffStartLat)
	}
	if upd.StaffStartLng != nil {
		doc.StaffStartLng = clonePtr(upd.StaffStartLng)
	}
	if upd.AfterPhotoURL != nil {
		doc.AfterPhotoURL = clonePtr(upd.AfterPhotoURL)
	}
	if upd.StaffCompleteLat != nil {
		doc.StaffCompleteLat = clonePtr(upd.StaffCompleteLat)
	}
	if upd.StaffCompleteLng != nil {
		doc.StaffCompleteLng = clonePtr(upd.StaffCompleteLng)
	}
	if upd.StartedAt != nil {
		doc.StartedAt = clonePtr(upd.StartedAt)
	} else if upd.StartedAtIfUnset != nil && doc.StartedAt == nil {
		doc.StartedAt = clonePtr(upd.StartedAtIfUnset)
	}
	if upd.ResolvedAt != nil {
		doc.ResolvedAt = clonePtr(upd.ResolvedAt)
	}
	if !upd.UpdatedAt.IsZero() {
		doc.UpdatedAt = upd.UpdatedAt
	}

	out := cloneFeedback(*doc)
	return &out, nil
}

func (s *Store) ListFeedback(ctx context.Context, filter store.FeedbackFilter) ([]models.Feedback, error) {
	s.mu.RLock()
	rows := make([]*feedbackRow, 0, len(s.feedback))
	for _, row := range s.feedback {
		if filter.Status != "" && row.doc.Status != filter.Status {
			continue
		}
		if filter.FacilityCode != "" && row.doc.FacilityCode != filter.FacilityCode {
			continue
		}
		if filter.AssignedTo != "" && (row.doc.AssignedTo == nil || *row.doc.AssignedTo != filter.AssignedTo) {
			continue
		}
		r := *row
		rows = append(rows, &r)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		ci, cj := rows[i].doc.CreatedAt, rows[j].doc.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return rows[i].seq > rows[j].seq
	})
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	out := make([]models.Feedback, len(rows))
	for i, row := range rows {
		out[i] = cloneFeedback(row.doc)
	}
	return out, nil
}

func (s *Store) CountFeedback(ctx context.Context, status models.FeedbackStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status == "" {
		return int64(len(s.feedback)), nil
	}
	var n int64
	for _, row := range s.feedback {
		if row.doc.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) ResolvedCountsByStaff(ctx context.Context, limit int) ([]store.StaffResolvedCount, error) {
	s.mu.RLock()
	counts := make(map[string]int64)
	for _, row := range s.feedback {
		if row.doc.Status != models.StatusResolved || row.doc.AssignedTo == nil {
			continue
		}
		counts[*row.doc.AssignedTo]++
	}
	s.mu.RUnlock()

	out := make([]store.StaffResolvedCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, store.StaffResolvedCount{StaffID: id, ResolvedCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResolvedCount != out[j].ResolvedCount {
			return out[i].ResolvedCount > out[j].ResolvedCount
		}
		return out[i].StaffID < out[j].StaffID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Diagnose(ctx context.Context) store.Diagnostics {
	return store.Diagnostics{
		Driver:      "memory",
		Database:    "memory",
		Connected:   true,
		Collections: []string{store.FacilityCollection, store.StaffCollection, store.FeedbackCollection},
	}
}

func (s *Store) Close(ctx context.Context) error { return nil }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneFeedback copies every pointer field so callers never share memory
// with a stored row.
func cloneFeedback(f models.Feedback) models.Feedback {
	f.Comment = clonePtr(f.Comment)
	f.PhotoURL = clonePtr(f.PhotoURL)
	f.UserLat = clonePtr(f.UserLat)
	f.UserLng = clonePtr(f.UserLng)
	f.AssignedTo = clonePtr(f.AssignedTo)
	f.BeforePhotoURL = clonePtr(f.BeforePhotoURL)
	f.StaffStartLat = clonePtr(f.StaffStartLat)
	f.StaffStartLng = clonePtr(f.StaffStartLng)
	f.StartedAt = clonePtr(f.StartedAt)
	f.AfterPhotoURL = clonePtr(f.AfterPhotoURL)
	f.StaffCompleteLat = clonePtr(f.StaffCompleteLat)
	f.StaffCompleteLng = clonePtr(f.StaffCompleteLng)
	f.ResolvedAt = clonePtr(f.ResolvedAt)
	return f
}

func cloneFacility(f models.Facility) models.Facility {
	f.Address = clonePtr(f.Address)
	f.Lat = clonePtr(f.Lat)
	f.Lng = clonePtr(f.Lng)
	f.Ward = clonePtr(f.Ward)
	return f
}

func cloneStaff(m models.Staff) models.Staff {
	m.Phone = clonePtr(m.Phone)
	m.EmployeeID = clonePtr(m.EmployeeID)
	m.Ward = clonePtr(m.Ward)
	return m
}
