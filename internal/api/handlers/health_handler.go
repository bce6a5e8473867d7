package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/store"
)

type Diagnoser interface {
	Diagnose(ctx context.Context) store.Diagnostics
}

type HealthHandler struct {
	Store Diagnoser
	Cfg   config.Config
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Swachh Scan Backend is running"})
}

func setOrNot(v string) string {
	if v != "" {
		return "Set"
	}
	return "Not Set"
}

// Diagnostics reports store reachability and the collections it holds. It
// always answers 200 so it can be used while the database is down.
func (h *HealthHandler) Diagnostics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	d := h.Store.Diagnose(ctx)
	response := gin.H{
		"backend":           "Running",
		"driver":            d.Driver,
		"database":          "Not Available",
		"database_url":      setOrNot(h.Cfg.Mongo.URI),
		"database_name":     setOrNot(h.Cfg.Mongo.DBName),
		"connection_status": "Not Connected",
		"collections":       []string{},
	}
	if d.Driver == config.DriverMemory {
		response["database_url"] = "Not Required"
	}

	switch {
	case d.Connected && d.Err == nil:
		response["database"] = "Connected & Working"
		response["connection_status"] = "Connected"
		if d.Collections != nil {
			response["collections"] = d.Collections
		}
	case d.Connected:
		response["database"] = "Connected but Error: " + truncate(d.Err.Error(), 80)
		response["connection_status"] = "Connected"
	case d.Err != nil:
		response["database"] = "Error: " + truncate(d.Err.Error(), 80)
	}
	c.JSON(http.StatusOK, response)
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
