package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brightlend/internal/authz"
	"brightlend/internal/models"
	"brightlend/internal/pdf"
	"brightlend/internal/registry"
	"brightlend/internal/services"
)

type ReportHandler struct {
	Registries *registry.Manager
	Resolver   *authz.Resolver
	Activities *services.ActivityService
	Generator  pdf.Generator
	Thresholds services.Thresholds
}

func NewReportHandler(registries *registry.Manager, resolver *authz.Resolver, activities *services.ActivityService, generator pdf.Generator, thresholds services.Thresholds) *ReportHandler {
	return &ReportHandler{
		Registries: registries,
		Resolver:   resolver,
		Activities: activities,
		Generator:  generator,
		Thresholds: thresholds,
	}
}

func (h *ReportHandler) viewFor(c *gin.Context) ([]models.Lead, bool) {
	userID, _ := getUserAndRole(c)
	access, err := h.Resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve role"})
		return nil, false
	}
	reg := h.Registries.Get(userID, access.OwnerScope)
	if !reg.Loaded() {
		res := reg.Load(c.Request.Context())
		if res.OrganicErr != nil && res.PaidErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leads"})
			return nil, false
		}
	}
	return reg.View(filtersFromQuery(c)), true
}

// Pipeline returns the dashboard counts for the current view.
func (h *ReportHandler) Pipeline(c *gin.Context) {
	view, ok := h.viewFor(c)
	if !ok {
		return
	}
	now := time.Now().UTC()

	byStatus := map[models.LeadStatus]int{}
	byOrigin := map[models.Origin]int{}
	needsAttention := 0
	for i := range view {
		byStatus[view[i].Status]++
		byOrigin[view[i].Origin]++
		if services.Classify(&view[i], now, h.Thresholds).NeedsAttention {
			needsAttention++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":           len(view),
		"needs_attention": needsAttention,
		"by_status":       byStatus,
		"by_origin":       byOrigin,
	})
}

// PipelinePDF renders the same view as a downloadable report.
func (h *ReportHandler) PipelinePDF(c *gin.Context) {
	view, ok := h.viewFor(c)
	if !ok {
		return
	}
	now := time.Now().UTC()

	data := pdf.PipelineReportData{
		GeneratedAt: now,
		GeneratedBy: c.GetString("email"),
		Total:       len(view),
		ByStatus:    map[string]int{},
	}
	for i := range view {
		l := &view[i]
		att := services.Classify(l, now, h.Thresholds)
		if att.NeedsAttention {
			data.NeedsAttention++
		}
		data.ByStatus[string(l.Status)]++
		data.Rows = append(data.Rows, pdf.PipelineRow{
			Name:          l.FirstName + " " + l.LastName,
			Origin:        string(l.Origin),
			Status:        string(l.Status),
			CreatedAt:     l.CreatedAt,
			LastContactAt: l.LastContactAt,
			Attention:     att.Label,
		})
	}

	out, err := h.Generator.GeneratePipelineReport(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pipeline.pdf"`)
	c.Data(http.StatusOK, "application/pdf", out)
}

type driftRow struct {
	Key      models.LeadKey `json:"key"`
	Cached   *time.Time     `json:"cached"`
	Computed *time.Time     `json:"computed"`
}

// Drift cross-checks each lead's cached last_contact_at against
// max(activity timestamps). Rows written before the transactional append can
// disagree; this surfaces them instead of letting them rot silently.
func (h *ReportHandler) Drift(c *gin.Context) {
	view, ok := h.viewFor(c)
	if !ok {
		return
	}

	var drifted []driftRow
	for i := range view {
		l := &view[i]
		computed, err := h.Activities.LastContact(c.Request.Context(), l.Key())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("recompute failed for %s/%d", l.Origin, l.ID)})
			return
		}
		if lastContactDiffers(l.LastContactAt, computed) {
			drifted = append(drifted, driftRow{Key: l.Key(), Cached: l.LastContactAt, Computed: computed})
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": drifted, "count": len(drifted)})
}

func lastContactDiffers(cached, computed *time.Time) bool {
	if computed == nil {
		// activities may have been pruned; a cached timestamp alone is fine
		return false
	}
	return cached == nil || computed.After(*cached)
}
