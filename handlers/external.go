package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/aggregator"
	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
)

const defaultHistoryLimit = 20

// ExternalHandler serves the external job aggregator
type ExternalHandler struct {
	agg *aggregator.Aggregator
	svc *jobs.Service
}

// NewExternalHandler creates a new external jobs handler
func NewExternalHandler(agg *aggregator.Aggregator, svc *jobs.Service) *ExternalHandler {
	return &ExternalHandler{agg: agg, svc: svc}
}

// SearchExternal fans a query out to the external sources
// @Summary External jobs
// @Description Queries the selected sources concurrently. A failing source contributes no results.
// @Tags External
// @Produce json
// @Param query query string true "Search terms"
// @Param sources query string false "Comma separated sources (jsearch, remotive, github, stackoverflow, startup, adzuna)"
// @Success 200 {object} models.ExternalJobsResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /external-jobs [get]
func (h *ExternalHandler) SearchExternal(c *gin.Context) {
	resp, err := h.agg.Search(c.Request.Context(), c.Query("query"), splitSources(c.Query("sources")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sources lists the enabled external sources
// @Summary External sources
// @Tags External
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /external-jobs/sources [get]
func (h *ExternalHandler) Sources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": h.agg.Names()})
}

// AdminSearch runs an external search and records it in the caller's history
// @Summary Admin external search
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ExternalSearchRequest true "Search"
// @Success 200 {object} models.SearchHistory
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/external/search [post]
func (h *ExternalHandler) AdminSearch(c *gin.Context) {
	var req models.ExternalSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.agg.Search(ctx, req.Query, req.Sources)
	if err != nil {
		respondError(c, err)
		return
	}

	hist, err := h.svc.SaveSearch(ctx, currentUserID(c), req.Query, resp.Sources, resp.Jobs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// ListHistory returns the caller's recent external searches
// @Summary Search history
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Entries" default(20)
// @Success 200 {array} models.SearchHistory
// @Router /admin/external/history [get]
func (h *ExternalHandler) ListHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 {
		limit = defaultHistoryLimit
	}

	list, err := h.svc.ListHistory(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetHistory returns one saved search with its results
// @Summary Search history entry
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "History id"
// @Success 200 {object} models.SearchHistory
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/external/history/{id} [get]
func (h *ExternalHandler) GetHistory(c *gin.Context) {
	hist, err := h.svc.GetHistory(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// DeleteHistory removes a saved search
// @Summary Delete search history entry
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "History id"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/external/history/{id} [delete]
func (h *ExternalHandler) DeleteHistory(c *gin.Context) {
	if err := h.svc.DeleteHistory(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func splitSources(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
