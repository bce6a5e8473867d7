package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/store"
)

type stubDiagnoser struct {
	d store.Diagnostics
}

func (s stubDiagnoser) Diagnose(ctx context.Context) store.Diagnostics { return s.d }

func TestTruncateKeepsWholeRunes(t *testing.T) {
	s := strings.Repeat("ab", 3) + "डेटाबेस"
	for n := 0; n <= utf8.RuneCountInString(s)+1; n++ {
		got := truncate(s, n)
		assert.True(t, utf8.ValidString(got), "n=%d", n)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), n)
	}
	assert.Equal(t, "abababड", truncate(s, 7))
	assert.Equal(t, s, truncate(s, 100))
}

func TestDiagnosticsReportsStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	msg := strings.Repeat("é", 120)
	h := &HealthHandler{
		Store: stubDiagnoser{d: store.Diagnostics{Driver: config.DriverMongo, Err: errors.New(msg)}},
		Cfg:   config.Config{Mongo: config.MongoConfig{URI: "mongodb://db:27017", DBName: "swachh_scan"}},
	}

	r := gin.New()
	r.GET("/test", h.Diagnostics)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Error: "+strings.Repeat("é", 80), body["database"])
	assert.Equal(t, "Not Connected", body["connection_status"])
	assert.Equal(t, "Set", body["database_url"])
}
