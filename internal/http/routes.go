package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"todo_webapp/internal/config"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the task API, health checks, the WebSocket feed and
// the frontend on r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	limit := middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateWindow())

	v1 := r.Group("/api/v1")
	v1.Use(limit)
	registerAPIRoutes(v1, h)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(limit)
	api.GET("/health", health.Health)
	registerAPIRoutes(api, h)

	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))

	// Frontend static files
	dir := cfg.FrontendDir
	r.StaticFS("/assets", gin.Dir(filepath.Join(dir, "assets"), false))
	r.StaticFile("/success.mp3", filepath.Join(dir, "success.mp3"))
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/export", h.ExportTasks)
	api.PATCH("/tasks/:id/toggle", h.ToggleTask)
	api.PUT("/tasks/:id", h.EditTask)
	api.POST("/tasks/:id/delete-intent", h.DeleteIntent)
	api.DELETE("/tasks/:id", h.DeleteTask)

	api.GET("/quote", h.Quote)
	api.GET("/stats", h.Stats)
}
