package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	webhookHandler *Webhook
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, webhookHandler *Webhook) *Router {
	return &Router{
		cfg:            cfg,
		webhookHandler: webhookHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	wh := e.Group("/webhook")
	wh.POST("/fathom", rt.webhookHandler.Receive)
	wh.GET("/status/:deliveryId", rt.webhookHandler.Status)
	wh.POST("/retry/:deliveryId", rt.webhookHandler.Retry)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
