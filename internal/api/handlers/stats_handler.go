package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/internal/apperr"
	"swachh-scan-api-server/internal/stats"
)

type StatsHandler struct {
	Stats *stats.Aggregator
}

// GetStats returns live counts and the staff leaderboard. ?top= overrides the
// leaderboard size.
func (h *StatsHandler) GetStats(c *gin.Context) {
	top := 0
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, apperr.Validation("top must be a positive integer", map[string]string{"top": "gte"}))
			return
		}
		top = n
	}

	snapshot, err := h.Stats.Snapshot(c.Request.Context(), top)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
