package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brightlend/internal/models"
	"brightlend/internal/services"
)

type ActivityHandler struct {
	Service *services.ActivityService
	Leads   *services.LeadService
}

func NewActivityHandler(service *services.ActivityService, leads *services.LeadService) *ActivityHandler {
	return &ActivityHandler{Service: service, Leads: leads}
}

type appendActivityRequest struct {
	Type     models.ActivityType `json:"type"`
	Notes    string              `json:"notes"`
	AudioRef *string             `json:"audio_ref,omitempty"`
}

// @Summary      Log a contact event
// @Tags         Activities
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Activity
// @Router       /leads/{origin}/{id}/activities [post]
func (h *ActivityHandler) Append(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)

	// existence check keeps orphan activity rows out
	if _, err := h.Leads.Get(c.Request.Context(), key); err != nil {
		writeError(c, err)
		return
	}

	var req appendActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := h.Service.Append(c.Request.Context(), key, req.Type, req.Notes, userID, req.AudioRef)
	if err != nil {
		writeError(c, err)
		return
	}

	// write-back: surface the new last_contact_at in list views without a
	// refetch (append itself never touches the registry)
	h.Leads.RecordContact(key, activity.CreatedAt)

	c.JSON(http.StatusCreated, activity)
}

func (h *ActivityHandler) List(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	activities, err := h.Service.List(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": activities, "count": len(activities)})
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	activityID, err := strconv.ParseInt(c.Param("activity_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), key, activityID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
