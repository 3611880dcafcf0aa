package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/analytics"
	"github.com/jobboard/backend/models"
)

// AnalyticsHandler proxies GA4 reports
type AnalyticsHandler struct {
	svc *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Report runs one of the canned GA4 reports
// @Summary Google Analytics report
// @Description report is one of overview, traffic, devices, countries, pages. Dates accept YYYY-MM-DD, today, yesterday or NdaysAgo. A failing overview returns mock data flagged mock=true.
// @Tags Analytics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AnalyticsRequest true "Report request"
// @Success 200 {object} analytics.Overview
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /ga4 [post]
func (h *AnalyticsHandler) Report(c *gin.Context) {
	var req models.AnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	report, err := h.svc.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
