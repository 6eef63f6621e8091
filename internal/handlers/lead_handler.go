package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brightlend/internal/authz"
	"brightlend/internal/models"
	"brightlend/internal/registry"
	"brightlend/internal/services"
)

type LeadHandler struct {
	Registries *registry.Manager
	Resolver   *authz.Resolver
	Service    *services.LeadService
	Thresholds services.Thresholds
}

func NewLeadHandler(registries *registry.Manager, resolver *authz.Resolver, service *services.LeadService, thresholds services.Thresholds) *LeadHandler {
	return &LeadHandler{Registries: registries, Resolver: resolver, Service: service, Thresholds: thresholds}
}

// leadView is a list/detail entry: the record plus its attention badge.
type leadView struct {
	models.Lead
	Attention services.Attention `json:"attention"`
}

func (h *LeadHandler) registryFor(c *gin.Context) (*registry.Registry, bool) {
	userID, _ := getUserAndRole(c)
	access, err := h.Resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve role"})
		return nil, false
	}
	return h.Registries.Get(userID, access.OwnerScope), true
}

// @Summary      List leads
// @Description  Unified, filtered, ordered view over both origins with attention badges
// @Tags         Leads
// @Produce      json
// @Param        search  query  string  false  "substring match on name/email/phone"
// @Param        status  query  string  false  "all (default, hides unqualified) or an exact status"
// @Param        owner   query  string  false  "unassigned or an owner id"
// @Param        origin  query  string  false  "organic | paid | both"
// @Success      200  {object}  map[string]interface{}
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}
	if !reg.Loaded() {
		res := reg.Load(c.Request.Context())
		if res.OrganicErr != nil && res.PaidErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leads"})
			return
		}
	}

	filters := filtersFromQuery(c)
	view := reg.View(filters)
	now := time.Now().UTC()

	items := make([]leadView, 0, len(view))
	for i := range view {
		items = append(items, leadView{
			Lead:      view[i],
			Attention: services.Classify(&view[i], now, h.Thresholds),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Refresh re-fetches both collections. Each origin's failure is reported
// independently; a refresh superseded by a newer one comes back stale.
func (h *LeadHandler) Refresh(c *gin.Context) {
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}
	res := reg.Load(c.Request.Context())

	resp := gin.H{"stale": res.Stale}
	if res.OrganicErr != nil {
		resp["organic_error"] = res.OrganicErr.Error()
	}
	if res.PaidErr != nil {
		resp["paid_error"] = res.PaidErr.Error()
	}
	status := http.StatusOK
	if res.OrganicErr != nil && res.PaidErr != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

// GetByID also serves the notification tap round-trip: the payload's leadKey
// resolves straight back to this detail view.
func (h *LeadHandler) GetByID(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	userID, roleID := getUserAndRole(c)

	lead, err := h.Service.Get(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	if !canSee(lead, userID, roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, leadView{
		Lead:      *lead,
		Attention: services.Classify(lead, time.Now().UTC(), h.Thresholds),
	})
}

// Navigate returns the neighbor key in the view derived from the CURRENT
// filters; changing filters mid-session changes what prev/next mean. A null
// key at either boundary tells the client to disable that control.
func (h *LeadHandler) Navigate(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	dir := registry.Direction(c.Query("direction"))
	if dir != registry.Prev && dir != registry.Next {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be prev or next"})
		return
	}
	reg, ok := h.registryFor(c)
	if !ok {
		return
	}
	next := reg.Navigate(key, dir, filtersFromQuery(c))
	c.JSON(http.StatusOK, gin.H{"key": next})
}

type updateStatusRequest struct {
	Status models.LeadStatus `json:"status"`
}

func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	userID, roleID := getUserAndRole(c)

	lead, err := h.Service.Get(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	// sales — только свою; elevated — любую
	if !canModify(lead, userID, roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.UpdateStatus(c.Request.Context(), key, req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

type assignRequest struct {
	OwnerID int64 `json:"owner_id"`
}

func (h *LeadHandler) Assign(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.AssignOwner(c.Request.Context(), key, req.OwnerID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner_id": req.OwnerID})
}

func (h *LeadHandler) Delete(c *gin.Context) {
	key, ok := parseLeadKey(c)
	if !ok {
		return
	}
	userID, roleID := getUserAndRole(c)

	lead, err := h.Service.Get(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	if !canModify(lead, userID, roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), key); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func canSee(lead *models.Lead, userID int64, roleID int) bool {
	if authz.IsElevated(roleID) || roleID == authz.RoleAudit {
		return true
	}
	return lead.OwnerID != nil && *lead.OwnerID == userID
}

func canModify(lead *models.Lead, userID int64, roleID int) bool {
	if authz.IsReadOnly(roleID) {
		return false
	}
	if authz.IsElevated(roleID) {
		return true
	}
	return lead.OwnerID != nil && *lead.OwnerID == userID
}
