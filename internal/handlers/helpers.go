package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brightlend/internal/apperr"
	"brightlend/internal/models"
	"brightlend/internal/registry"
)

// более устойчиво к типам (int / int64 / float64 / string)
func getInt64FromCtx(c *gin.Context, key string) (int64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID int64, roleID int) {
	if id, ok := getInt64FromCtx(c, "user_id"); ok {
		userID = id
	}
	if id, ok := getInt64FromCtx(c, "role_id"); ok {
		roleID = int(id)
	}
	return
}

func parseLeadKey(c *gin.Context) (models.LeadKey, bool) {
	origin, ok := models.ParseOrigin(c.Param("origin"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid origin"})
		return models.LeadKey{}, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return models.LeadKey{}, false
	}
	return models.LeadKey{Origin: origin, ID: id}, true
}

func filtersFromQuery(c *gin.Context) registry.Filters {
	return registry.Filters{
		Search: c.Query("search"),
		Status: c.DefaultQuery("status", "all"),
		Owner:  c.Query("owner"),
		Origin: c.DefaultQuery("origin", registry.SelectBoth),
	}
}

// разносим типовые ошибки в статус-коды
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
	case errors.Is(err, apperr.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "notification permission denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
