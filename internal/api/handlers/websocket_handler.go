package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"swachh-scan-api-server/internal/socket"
	"swachh-scan-api-server/internal/stats"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub   *socket.Hub
	Stats *stats.Aggregator
}

// ServeWs upgrades a dashboard connection, sends it the current stats and
// then streams lifecycle events until the client goes away.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.Warn("failed to upgrade dashboard connection", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	snapshot, err := h.Stats.Snapshot(ctx, 0)
	cancel()

	var initial []byte
	if err == nil {
		initial, err = json.Marshal(gin.H{"type": "stats.snapshot", "stats": snapshot})
	}
	if err != nil {
		slog.Warn("initial dashboard snapshot failed", "error", err)
	}

	h.Hub.Serve(uuid.NewString(), conn, initial)
}
