package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ayushant/skillspan-hub/internal/response"
	"github.com/Ayushant/skillspan-hub/internal/service"
)

// DashboardHandler serves the admin overview screens.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetUniversityDashboard godoc
// GET /api/v1/admin/dashboard
// Returns head counts, license usage, session distribution, and the average
// score for the admin's university.
func (h *DashboardHandler) GetUniversityDashboard(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetUniversityDashboard(c.Request.Context(), universityID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

// GetPlatformStats godoc
// GET /api/v1/super/stats
// Returns the platform-wide roll-up for super admins.
func (h *DashboardHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.dashboardService.GetPlatformStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, stats)
}
