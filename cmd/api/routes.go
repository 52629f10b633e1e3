package main

import (
	"salescoach-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		// CALL LOG routes
		logs := v1.Group("/call-logs")
		{
			logs.GET("", h.ListCallLogs)
			logs.GET("/summary", h.ScoreSummary)
			logs.PUT("/feedback", h.SaveFeedback)
		}

		// CREDIT routes
		credits := v1.Group("/credits")
		{
			credits.GET("/users", h.CreditUsers)
			credits.GET("/balance", h.CreditBalance)
			credits.GET("/audit", h.AuditTrail)

			credits.POST("/add", h.AddCredits)
			credits.POST("/remove", h.RemoveCredits)
			credits.POST("/automation", h.SetAutomation)
			credits.POST("/remove-user", h.RemoveUser)

			bulk := credits.Group("/bulk")
			{
				bulk.POST("/add", h.BulkAddCredits)
				bulk.POST("/remove", h.BulkRemoveCredits)
				bulk.POST("/automation", h.BulkSetAutomation)
			}
		}
	}
}
