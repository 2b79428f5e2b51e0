package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

type HealthHandler struct {
	db      *gorm.DB
	env     string
	started time.Time
}

func NewHealthHandler(db *gorm.DB, env string) *HealthHandler {
	return &HealthHandler{db: db, env: env, started: time.Now()}
}

// Health reports 503 when the database does not answer a ping.
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "OK", http.StatusOK
	database := "up"

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "DEGRADED", http.StatusServiceUnavailable
		database = "down"
	}

	c.JSON(code, gin.H{
		"status":      status,
		"database":    database,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.started).Seconds(),
		"environment": h.env,
	})
}

func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Clinic Scheduler API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth":          "/api/auth",
			"admin":         "/api/admin",
			"appointments":  "/api/appointments",
			"practitioners": "/api/practitioners",
			"services":      "/api/services",
			"programs":      "/api/programs",
			"testimonials":  "/api/testimonials",
			"contact":       "/api/contact",
			"notifications": "/api/notifications",
			"uploads":       "/api/uploads",
		},
	})
}

// NotFound answers unknown /api routes with JSON; everything else gets a plain 404.
func NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		httperr.NotFound(c, "route_not_found", "API endpoint not found")
		return
	}
	c.String(http.StatusNotFound, "404 page not found")
}
