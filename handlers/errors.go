package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/aggregator"
	"github.com/jobboard/backend/analytics"
	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/social"
)

// respondError maps service errors to status codes. Unknown errors are
// logged and reported as 500 without details.
func respondError(c *gin.Context, err error) {
	var validation *jobs.ValidationError
	switch {
	case errors.As(err, &validation):
		abortJSON(c, http.StatusBadRequest, "Validation failed", validation.Error())
	case errors.Is(err, jobs.ErrNotFound):
		abortJSON(c, http.StatusNotFound, "Not found", "")
	case errors.Is(err, jobs.ErrDuplicate):
		abortJSON(c, http.StatusConflict, "A job with this title and company already exists", "")
	case errors.Is(err, aggregator.ErrEmptyQuery),
		errors.Is(err, aggregator.ErrNoSources),
		errors.Is(err, analytics.ErrUnknownReport),
		errors.Is(err, analytics.ErrInvalidDate),
		errors.Is(err, social.ErrUnknownPlatform):
		abortJSON(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, analytics.ErrNotConfigured):
		abortJSON(c, http.StatusServiceUnavailable, "Analytics is not configured", "")
	default:
		log.WithField("path", c.FullPath()).Errorf("[Handler] %v", err)
		abortJSON(c, http.StatusInternalServerError, "Internal server error", "")
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	abortJSON(c, http.StatusBadRequest, msg, details)
}

func abortJSON(c *gin.Context, code int, msg, details string) {
	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}
