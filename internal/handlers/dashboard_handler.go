package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/dashboard"
)

type DashboardHandler struct {
	stats *dashboard.GetStats
}

func NewDashboardHandler(stats *dashboard.GetStats) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	out, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "dashboard_stats_failed", "Failed to fetch dashboard statistics", err)
		return
	}
	httpresp.OK(c, out)
}
