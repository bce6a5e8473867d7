package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/lifecycle"
	"swachh-scan-api-server/internal/metrics"
	"swachh-scan-api-server/internal/models"
	"swachh-scan-api-server/internal/registry"
	"swachh-scan-api-server/internal/socket"
	"swachh-scan-api-server/internal/stats"
	"swachh-scan-api-server/internal/store/memstore"
)

type testServer struct {
	router *gin.Engine
	hub    *socket.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := memstore.New()
	m := metrics.New()
	hub := socket.NewHub(logger)

	cfg := config.Config{}
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Store.Driver = config.DriverMemory

	deps := Dependencies{
		Cfg:      cfg,
		Logger:   logger,
		Store:    st,
		Registry: registry.NewService(st, st, logger),
		Lifecycle: lifecycle.NewService(st, st, lifecycle.Options{
			Logger:    logger,
			Publisher: hub,
			Recorder:  m,
		}),
		Stats:   stats.NewAggregator(st, st, 10),
		Hub:     hub,
		Metrics: m,
	}
	return &testServer{router: SetupRouter(deps), hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) seedFacility(t *testing.T, code string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/facilities", `{"code":"`+code+`","name":"Toilet Block"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (s *testServer) submit(t *testing.T, code string, rating int) models.Feedback {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"facility_code": code, "rating": rating})
	w := s.do(t, http.MethodPost, "/api/feedback", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Feedback](t, w)
}

func TestRootAndDiagnostics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Swachh Scan Backend is running", decode[map[string]string](t, w)["message"])

	for _, path := range []string{"/test", "/healthz"} {
		w = s.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, "Connected & Working", body["database"])
		assert.Equal(t, "memory", body["driver"])
		assert.Len(t, body["collections"], 3)
	}
}

func TestFacilityRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/facilities", `{"code":"F1","name":"Market Toilet","ward":"12"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[models.Facility](t, w)
	assert.Equal(t, "F1", created.Code)
	assert.True(t, created.IsActive)
	assert.False(t, created.ID.IsZero())

	w = s.do(t, http.MethodPost, "/api/facilities", `{"code":"F1","name":"Other"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Facility code already exists", decode[map[string]any](t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/facilities", `{"code":"F2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["fields"], "name")

	w = s.do(t, http.MethodGet, "/api/facilities/by-code/F1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Market Toilet", decode[models.Facility](t, w).Name)

	w = s.do(t, http.MethodGet, "/api/facilities/by-code/NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaffRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = s.do(t, http.MethodPost, "/api/staff", `{"name":"Asha","phone":"98000"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/staff", `{"phone":"98000"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/staff", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Staff](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name)
}

func TestSubmitFeedbackErrors(t *testing.T) {
	s := newTestServer(t)
	s.seedFacility(t, "F1")

	w := s.do(t, http.MethodPost, "/api/feedback", `{"facility_code":"F1","rating":6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/feedback", `{"facility_code":"MISSING","rating":3}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Facility not found for given code", decode[map[string]any](t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/feedback", `{"facility_code":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.seedFacility(t, "F1")

	fb := s.submit(t, "F1", 2)
	assert.Equal(t, models.StatusOpen, fb.Status)
	assert.Nil(t, fb.AssignedTo)
	id := fb.ID.Hex()

	w := s.do(t, http.MethodPatch, "/api/feedback/"+id+"/assign", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/feedback/"+id+"/assign", `{"staff_id":"S1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assigned := decode[models.Feedback](t, w)
	assert.Equal(t, models.StatusInProgress, assigned.Status)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, "S1", *assigned.AssignedTo)
	require.NotNil(t, assigned.StartedAt)

	// An empty body is accepted on start.
	w = s.do(t, http.MethodPatch, "/api/feedback/"+id+"/start", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	started := decode[models.Feedback](t, w)
	assert.True(t, assigned.StartedAt.Equal(*started.StartedAt))

	w = s.do(t, http.MethodPost, "/api/feedback/"+id+"/resolve", `{"after_photo_url":"https://cdn.example.com/a.jpg"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resolved := decode[models.Feedback](t, w)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.AfterPhotoURL)

	for _, action := range []string{"assign", "start", "resolve"} {
		w = s.do(t, http.MethodPatch, "/api/feedback/000000000000000000000000/"+action, `{"staff_id":"S1"}`)
		assert.Equal(t, http.StatusNotFound, w.Code, action)
		w = s.do(t, http.MethodPatch, "/api/feedback/not-an-id/"+action, `{"staff_id":"S1"}`)
		assert.Equal(t, http.StatusNotFound, w.Code, action)
	}
}

func TestListFeedbackQuery(t *testing.T) {
	s := newTestServer(t)
	s.seedFacility(t, "F1")
	s.seedFacility(t, "F2")

	s.submit(t, "F1", 1)
	s.submit(t, "F2", 2)
	last := s.submit(t, "F1", 3)

	w := s.do(t, http.MethodGet, "/api/feedback?facility_code=F1", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Feedback](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, last.ID, list[0].ID)

	w = s.do(t, http.MethodGet, "/api/feedback?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Feedback](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/feedback?status=resolved", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = s.do(t, http.MethodGet, "/api/feedback?status=closed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	for _, query := range []string{"limit=abc", "limit=-1"} {
		w = s.do(t, http.MethodGet, "/api/feedback?"+query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestStatsRoute(t *testing.T) {
	s := newTestServer(t)
	s.seedFacility(t, "F1")

	w := s.do(t, http.MethodPost, "/api/staff", `{"name":"Asha"}`)
	require.Equal(t, http.StatusOK, w.Code)
	staff := decode[models.Staff](t, w)

	for i := 0; i < 3; i++ {
		fb := s.submit(t, "F1", 4)
		if i == 0 {
			continue
		}
		w = s.do(t, http.MethodPatch, "/api/feedback/"+fb.ID.Hex()+"/assign", `{"staff_id":"`+staff.ID.Hex()+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		if i == 2 {
			w = s.do(t, http.MethodPatch, "/api/feedback/"+fb.ID.Hex()+"/resolve", "")
			require.Equal(t, http.StatusOK, w.Code)
		}
	}

	w = s.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snapshot := decode[models.DashboardStats](t, w)
	assert.Equal(t, models.StatusCounts{Total: 3, Open: 1, InProgress: 1, Resolved: 1}, snapshot.Counts)
	require.Len(t, snapshot.Leaderboard, 1)
	require.NotNil(t, snapshot.Leaderboard[0].StaffName)
	assert.Equal(t, "Asha", *snapshot.Leaderboard[0].StaffName)
	assert.EqualValues(t, 1, snapshot.Leaderboard[0].ResolvedCount)

	w = s.do(t, http.MethodGet, "/api/stats?top=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	s.seedFacility(t, "F1")
	s.submit(t, "F1", 5)

	w := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `event="feedback.submitted"`)
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
	req.Header.Set("Origin", "https://dashboard.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDashboardFeed(t *testing.T) {
	s := newTestServer(t)
	s.seedFacility(t, "F1")

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/dashboard/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first struct {
		Type  string               `json:"type"`
		Stats models.DashboardStats `json:"stats"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "stats.snapshot", first.Type)

	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	body, _ := json.Marshal(map[string]any{"facility_code": "F1", "rating": 1})
	resp, err := http.Post(srv.URL+"/api/feedback", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event lifecycle.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, lifecycle.EventSubmitted, event.Type)
	assert.Equal(t, "F1", event.Feedback.FacilityCode)
}
