// server/internal/api/handlers/facility_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/internal/registry"
)

type FacilityHandler struct {
	Registry *registry.Service
}

// CreateFacility registers a facility; a duplicate code is rejected.
func (h *FacilityHandler) CreateFacility(c *gin.Context) {
	var req registry.FacilityInput
	if !bindJSON(c, &req, false) {
		return
	}

	facility, err := h.Registry.CreateFacility(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}

// GetFacilityByCode looks a facility up by its citizen-facing code.
func (h *FacilityHandler) GetFacilityByCode(c *gin.Context) {
	facility, err := h.Registry.GetFacilityByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}
