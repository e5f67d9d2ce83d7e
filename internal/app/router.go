// internal/app/router.go
package app

import (
	"net/http"

	analyticsHandler "leadpulse-service/internal/handlers/analytics"
	callHandler "leadpulse-service/internal/handlers/call"
	leadHandler "leadpulse-service/internal/handlers/lead"
	webhookHandler "leadpulse-service/internal/handlers/webhook"
	wsHandler "leadpulse-service/internal/handlers/ws"
	"leadpulse-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	LeadHandler      *leadHandler.LeadHandler
	CallHandler      *callHandler.CallHandler
	AnalyticsHandler *analyticsHandler.AnalyticsHandler
	WebhookHandler   *webhookHandler.WebhookHandler
	WSHandler        *wsHandler.WebSocketHandler
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimit        gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Inbound webhooks are unauthenticated but rate limited; partners hold
	// a per-organization URL instead of a token.
	webhooks := r.Group("/webhooks", h.RateLimit)
	{
		webhooks.POST("/:org_id/leads", h.WebhookHandler.CaptureLead)
		webhooks.POST("/:org_id/calls/status", h.WebhookHandler.CallStatus)
	}

	api := r.Group("/api/v1", h.AuthMiddleware.Auth())
	{
		leads := api.Group("/leads")
		{
			leads.POST("", h.LeadHandler.CreateLead)
			leads.GET("", h.LeadHandler.ListLeads)
			leads.POST("/bulk-import", h.LeadHandler.BulkImport)
			leads.GET("/stats", h.LeadHandler.GetStats)
			leads.GET("/:id", h.LeadHandler.GetLead)
			leads.PATCH("/:id", h.LeadHandler.UpdateLead)
			leads.DELETE("/:id", h.LeadHandler.DeleteLead)
			leads.PUT("/:id/stage", h.LeadHandler.Transition)
			leads.POST("/:id/notes", h.LeadHandler.AddNote)
			leads.GET("/:id/activities", h.LeadHandler.ListActivities)
		}

		calls := api.Group("/calls")
		{
			calls.POST("", h.CallHandler.LogCall)
			calls.GET("", h.CallHandler.ListCalls)
			calls.PATCH("/:id/status", h.CallHandler.UpdateStatus)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/funnel", h.AnalyticsHandler.GetFunnel)
			analytics.GET("/rankings", h.AnalyticsHandler.GetRankings)
			analytics.GET("/quality", h.AnalyticsHandler.GetQuality)
		}

		api.GET("/ws", h.WSHandler.HandleConnection)
		api.GET("/ws/stats", h.WSHandler.GetStats)
	}
}
