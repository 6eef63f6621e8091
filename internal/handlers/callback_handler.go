package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"brightlend/internal/apperr"
	"brightlend/internal/services"
)

type CallbackHandler struct {
	Service *services.CallbackService
}

func NewCallbackHandler(service *services.CallbackService) *CallbackHandler {
	return &CallbackHandler{Service: service}
}

type scheduleCallbackRequest struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	Note         string    `json:"note"`
}

// @Summary      Schedule a follow-up callback
// @Description  Persists the callback, schedules the reminder notification and
// @Description  best-effort pushes a calendar event. Past times are accepted;
// @Description  the notification trigger is clamped forward.
// @Tags         Callbacks
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Callback
// @Router       /leads/{origin}/{id}/callbacks [post]
func (h *CallbackHandler) Schedule(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)

	var req scheduleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cb, err := h.Service.Schedule(c.Request.Context(), key, req.ScheduledFor, req.Note, userID)
	if err != nil {
		// denial is blocking but the row is already persisted; return it so
		// the client can still show the callback
		if errors.Is(err, apperr.ErrPermissionDenied) && cb != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "notification permission denied",
				"callback": cb,
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cb)
}

func (h *CallbackHandler) List(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	callbacks, err := h.Service.List(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": callbacks, "count": len(callbacks)})
}

func (h *CallbackHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
