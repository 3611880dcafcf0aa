package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/auth"
	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/social"
	"github.com/jobboard/backend/storage"
)

// SocialPostResponse holds the generated posts for one job
// @Description Generated social posts per platform
type SocialPostResponse struct {
	JobID string                                `json:"jobId"`
	Posts map[social.Platform][]social.Variation `json:"posts"`
}

// AdminHandler serves the admin dashboard
type AdminHandler struct {
	svc    *jobs.Service
	logos  storage.LogoStore
	social *social.Generator
}

// NewAdminHandler creates a new admin handler. logos may be nil, in which
// case logo uploads answer 503.
func NewAdminHandler(svc *jobs.Service, logos storage.LogoStore, gen *social.Generator) *AdminHandler {
	return &AdminHandler{svc: svc, logos: logos, social: gen}
}

// ListJobs returns one page of jobs including inactive ones
// @Summary Admin job list
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(12)
// @Param search query string false "Matches title, company or location"
// @Success 200 {object} models.PageResult
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/jobs [get]
func (h *AdminHandler) ListJobs(c *gin.Context) {
	page, err := h.svc.AdminSearchJobs(c.Request.Context(), jobs.ParseAPIParams(c.Request.URL.Query()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetJob returns any job by id
// @Summary Admin get job
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Success 200 {object} models.Job
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/jobs/{id} [get]
func (h *AdminHandler) GetJob(c *gin.Context) {
	job, err := h.svc.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// CreateJob posts a new job
// @Summary Create job
// @Description Validates the form and rejects duplicates of an active job
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.JobInput true "Job form"
// @Success 201 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Job already exists"
// @Router /admin/jobs [post]
func (h *AdminHandler) CreateJob(c *gin.Context) {
	var in models.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	job, err := h.svc.CreateJob(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{"job": job.ID, "slug": job.Slug}).Info("[Admin] job created")
	c.JSON(http.StatusCreated, job)
}

// UpdateJob replaces a job's fields
// @Summary Update job
// @Description Changing title or company regenerates the slug
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Param request body models.JobInput true "Job form"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/jobs/{id} [put]
func (h *AdminHandler) UpdateJob(c *gin.Context) {
	var in models.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	job, err := h.svc.UpdateJob(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ToggleJob flips one boolean flag of a job
// @Summary Toggle job flag
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Param field path string true "active, remote or featured"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/jobs/{id}/toggle/{field} [patch]
func (h *AdminHandler) ToggleJob(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var (
		job models.Job
		err error
	)
	switch c.Param("field") {
	case "active":
		job, err = h.svc.ToggleActive(ctx, id)
	case "remote":
		job, err = h.svc.ToggleRemote(ctx, id)
	case "featured":
		job, err = h.svc.ToggleFeatured(ctx, id)
	default:
		badRequest(c, "Unknown field", nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteJob removes a job
// @Summary Delete job
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Job id"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/jobs/{id} [delete]
func (h *AdminHandler) DeleteJob(c *gin.Context) {
	if err := h.svc.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	log.WithField("job", c.Param("id")).Info("[Admin] job deleted")
	c.Status(http.StatusNoContent)
}

// CheckDuplicate reports whether an equivalent active job exists
// @Summary Duplicate check
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DuplicateCheckRequest true "Candidate job"
// @Success 200 {object} models.DuplicateCheckResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/jobs/check-duplicate [post]
func (h *AdminHandler) CheckDuplicate(c *gin.Context) {
	var req models.DuplicateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	exists, err := h.svc.CheckJobExists(c.Request.Context(), req.Title, req.Company, req.ApplicationURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DuplicateCheckResponse{
		Exists: exists,
		Slug:   models.GenerateSlug(req.Title, req.Company),
	})
}

// UploadLogo stores a company logo
// @Summary Upload company logo
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param logo formData file true "Image (png, jpg, svg, webp, gif)"
// @Param company formData string true "Company name"
// @Success 200 {object} models.LogoUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /admin/logos [post]
func (h *AdminHandler) UploadLogo(c *gin.Context) {
	if h.logos == nil {
		abortJSON(c, http.StatusServiceUnavailable, "Logo storage is not configured", "")
		return
	}

	company := strings.TrimSpace(c.PostForm("company"))
	if company == "" {
		badRequest(c, "Company is required", nil)
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		badRequest(c, "Logo file is required", err)
		return
	}
	defer file.Close()

	if !storage.IsAllowedLogoType(filepath.Ext(header.Filename)) {
		badRequest(c, "Unsupported image type", nil)
		return
	}
	if header.Size > storage.MaxLogoBytes {
		badRequest(c, "Logo exceeds 2MB", nil)
		return
	}

	url, err := h.logos.UploadLogo(c.Request.Context(), company, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithField("company", company).Info("[Admin] logo uploaded")
	c.JSON(http.StatusOK, models.LogoUploadResponse{URL: url, Message: "Logo uploaded successfully"})
}

// SocialPosts generates promotional posts for a job
// @Summary Social post text
// @Description Generates every style variation for one platform, or for all platforms when none is given
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Param platform query string false "linkedin, twitter or reddit"
// @Success 200 {object} SocialPostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/jobs/{id}/social [get]
func (h *AdminHandler) SocialPosts(c *gin.Context) {
	job, err := h.svc.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	platforms := h.social.Platforms()
	if p := strings.ToLower(strings.TrimSpace(c.Query("platform"))); p != "" {
		platforms = []social.Platform{social.Platform(p)}
	}

	resp := SocialPostResponse{JobID: job.ID, Posts: make(map[social.Platform][]social.Variation, len(platforms))}
	for _, p := range platforms {
		variations, err := h.social.Generate(job, p)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Posts[p] = variations
	}
	c.JSON(http.StatusOK, resp)
}

// ClickStats summarises application clicks
// @Summary Click analytics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ClickStats
// @Router /admin/clicks [get]
func (h *AdminHandler) ClickStats(c *gin.Context) {
	stats, err := h.svc.ClickStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ImportJobs turns external jobs into local listings
// @Summary Import external jobs
// @Description Skips jobs that were already imported or duplicate an active job
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ImportRequest true "Jobs to import"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/import [post]
func (h *AdminHandler) ImportJobs(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	res, err := h.svc.ImportJobs(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"imported":   len(res.Imported),
		"duplicates": len(res.Duplicates),
		"failed":     len(res.Failed),
	}).Info("[Admin] import finished")
	c.JSON(http.StatusOK, res)
}

// ListImported returns the caller's import bookkeeping
// @Summary Imported jobs
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ImportedJob
// @Router /admin/import [get]
func (h *AdminHandler) ListImported(c *gin.Context) {
	list, err := h.svc.ListImported(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// currentUserID is the authenticated admin's id, falling back to the email
func currentUserID(c *gin.Context) string {
	claims := auth.GetAuthClaims(c)
	if claims == nil {
		return ""
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	return claims.Email
}
