package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
)

const maxRelated = jobs.DefaultRelatedCount

// JobsHandler serves the public job listing
type JobsHandler struct {
	svc *jobs.Service
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(svc *jobs.Service) *JobsHandler {
	return &JobsHandler{svc: svc}
}

// ListJobs returns one page of active jobs
// @Summary List jobs
// @Description Paginated search over active jobs. Backend failures return an empty page.
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(12)
// @Param search query string false "Matches title, company or location"
// @Param location query string false "Location substring"
// @Param category query string false "Comma separated categories"
// @Param type query string false "Comma separated job types"
// @Param experience query string false "Comma separated experience levels"
// @Param remote query bool false "Remote only"
// @Param featured query bool false "Featured only"
// @Param sortBy query string false "date or salary"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} models.PageResult
// @Router /jobs [get]
func (h *JobsHandler) ListJobs(c *gin.Context) {
	params := jobs.ParseAPIParams(c.Request.URL.Query())
	c.JSON(http.StatusOK, h.svc.SearchJobs(c.Request.Context(), params))
}

// GetJob returns an active job by slug or id
// @Summary Get job
// @Tags Jobs
// @Produce json
// @Param slug path string true "Job slug or id"
// @Success 200 {object} models.Job
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{slug} [get]
func (h *JobsHandler) GetJob(c *gin.Context) {
	job, err := h.svc.GetPublicJob(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// RelatedJobs returns jobs similar to the given one
// @Summary Related jobs
// @Description Up to limit active jobs sharing category, tags or location, topped up with recent jobs
// @Tags Jobs
// @Produce json
// @Param slug path string true "Job slug or id"
// @Param limit query int false "Number of jobs" default(12)
// @Success 200 {object} models.RelatedJobsResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{slug}/related [get]
func (h *JobsHandler) RelatedJobs(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(jobs.DefaultRelatedCount)))
	if err != nil || n < 1 {
		n = jobs.DefaultRelatedCount
	}
	if n > maxRelated {
		n = maxRelated
	}

	related, err := h.svc.RelatedJobs(c.Request.Context(), c.Param("slug"), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RelatedJobsResponse{Jobs: related})
}

// Stats returns landing-page counters
// @Summary Site statistics
// @Tags Jobs
// @Produce json
// @Success 200 {object} models.SiteStats
// @Router /stats [get]
func (h *JobsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context()))
}

// RecordClick stores an "Apply" click
// @Summary Record application click
// @Description Stores the click and checks the application link in the background
// @Tags Jobs
// @Accept json
// @Produce json
// @Param slug path string true "Job slug or id"
// @Param request body models.ClickRequest false "Click metadata"
// @Success 202 {object} models.JobClick
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{slug}/click [post]
func (h *JobsHandler) RecordClick(c *gin.Context) {
	var req models.ClickRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)
	if req.Referrer == "" {
		req.Referrer = c.Request.Referer()
	}

	click, err := h.svc.RecordClick(c.Request.Context(), c.Param("slug"), c.Request.UserAgent(), req.Referrer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, click)
}
