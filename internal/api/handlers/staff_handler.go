package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/internal/registry"
)

type StaffHandler struct {
	Registry *registry.Service
}

func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req registry.StaffInput
	if !bindJSON(c, &req, false) {
		return
	}

	staff, err := h.Registry.CreateStaff(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) ListStaff(c *gin.Context) {
	staff, err := h.Registry.ListStaff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}
