package routes

import (
	"github.com/gin-gonic/gin"

	"brightlend/internal/authz"
	"brightlend/internal/handlers"
	"brightlend/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	leadHandler *handlers.LeadHandler,
	activityHandler *handlers.ActivityHandler,
	callbackHandler *handlers.CallbackHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))
	r.Use(middleware.ReadOnlyGuard())

	// LEADS
	leads := r.Group("/leads")
	{
		leads.GET("/", leadHandler.List)
		leads.POST("/refresh", leadHandler.Refresh)
		leads.GET("/:origin/:id", leadHandler.GetByID)
		leads.GET("/:origin/:id/navigate", leadHandler.Navigate)
		leads.POST("/:origin/:id/status", leadHandler.UpdateStatus)
		leads.DELETE("/:origin/:id", leadHandler.Delete)

		// reassignment is a management action
		leads.POST("/:origin/:id/assign",
			middleware.RequireRoles(authz.RoleOperations, authz.RoleManagement, authz.RoleAdmin),
			leadHandler.Assign)

		// ACTIVITIES
		leads.GET("/:origin/:id/activities", activityHandler.List)
		leads.POST("/:origin/:id/activities", activityHandler.Append)
		leads.DELETE("/:origin/:id/activities/:activity_id", activityHandler.Delete)

		// CALLBACKS
		leads.GET("/:origin/:id/callbacks", callbackHandler.List)
		leads.POST("/:origin/:id/callbacks", callbackHandler.Schedule)
	}

	r.DELETE("/callbacks/:id", callbackHandler.Delete)

	// REPORTS (audit/ops/mgmt/admin)
	reports := r.Group("/reports",
		middleware.RequireRoles(authz.RoleAudit, authz.RoleOperations, authz.RoleManagement, authz.RoleAdmin),
	)
	{
		reports.GET("/pipeline", reportHandler.Pipeline)
		reports.GET("/pipeline.pdf", reportHandler.PipelinePDF)
		reports.GET("/drift", reportHandler.Drift)
	}

	return r
}
