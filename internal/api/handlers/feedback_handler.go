package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/internal/apperr"
	"swachh-scan-api-server/internal/lifecycle"
	"swachh-scan-api-server/internal/models"
)

type FeedbackHandler struct {
	Lifecycle *lifecycle.Service
}

// SubmitFeedback records a citizen's rating for a facility.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req lifecycle.SubmitInput
	if !bindJSON(c, &req, false) {
		return
	}

	feedback, err := h.Lifecycle.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

// ListFeedback supports ?status=&facility_code=&assigned_to=&limit=.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	in := lifecycle.ListInput{
		Status:       c.Query("status"),
		FacilityCode: c.Query("facility_code"),
		AssignedTo:   c.Query("assigned_to"),
	}
	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Validation("limit must be an integer", map[string]string{"limit": "numeric"}))
			return
		}
		in.Limit = &limit
	}

	items, err := h.Lifecycle.List(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *FeedbackHandler) AssignFeedback(c *gin.Context) {
	var req lifecycle.AssignInput
	if !bindJSON(c, &req, false) {
		return
	}

	feedback, err := h.Lifecycle.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) StartTask(c *gin.Context) {
	var req lifecycle.StartInput
	if !bindJSON(c, &req, true) {
		return
	}

	feedback, err := h.Lifecycle.Start(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) ResolveTask(c *gin.Context) {
	var req lifecycle.ResolveInput
	if !bindJSON(c, &req, true) {
		return
	}

	feedback, err := h.Lifecycle.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}
