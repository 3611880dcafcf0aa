package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
)

// SearchJobsTool searches the active job listings
type SearchJobsTool struct {
	svc *jobs.Service
}

// NewSearchJobsTool creates a new job search tool
func NewSearchJobsTool(svc *jobs.Service) *SearchJobsTool {
	return &SearchJobsTool{svc: svc}
}

func (t *SearchJobsTool) Name() string {
	return "search_jobs"
}

func (t *SearchJobsTool) Description() string {
	return `Search the job board's active listings.
Filters are optional; results are newest first.
Returns one page of jobs with the total count.`
}

func (t *SearchJobsTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"query":      stringProp("Matches title, company or location"),
		"location":   stringProp("Location substring"),
		"category":   arrayProp("Categories, e.g. backend, design"),
		"type":       arrayProp("Job types: full-time, part-time, contract, freelance, internship"),
		"experience": arrayProp("Experience levels: intern, junior, mid, senior ..."),
		"remote":     boolProp("Only remote jobs"),
		"page":       intProp("Page number, starting at 1"),
		"limit":      intProp("Page size, at most 100"),
	})
}

// SearchJobsInput is the input of search_jobs
type SearchJobsInput struct {
	Query      string   `json:"query"`
	Location   string   `json:"location"`
	Category   []string `json:"category"`
	Type       []string `json:"type"`
	Experience []string `json:"experience"`
	Remote     bool     `json:"remote"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
}

func (t *SearchJobsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in SearchJobsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid input: %v", err))
	}

	p := jobs.SearchParams{
		Page:      in.Page,
		Limit:     in.Limit,
		SortBy:    models.SortByDate,
		SortOrder: models.SortDesc,
		Filters: models.JobFilters{
			Query:    strings.TrimSpace(in.Query),
			Location: strings.TrimSpace(in.Location),
		},
	}
	if p.Limit > jobs.MaxPageSize {
		p.Limit = jobs.MaxPageSize
	}
	for _, c := range in.Category {
		p.Filters.Category = append(p.Filters.Category, models.Category(strings.ToLower(c)))
	}
	for _, jt := range in.Type {
		p.Filters.Type = append(p.Filters.Type, models.NormalizeJobType(jt))
	}
	for _, e := range in.Experience {
		p.Filters.Experience = append(p.Filters.Experience, models.Experience(strings.ToLower(e)))
	}
	if in.Remote {
		p.Filters.IsRemote = models.Bool(true)
	}

	return NewSuccessResult(t.svc.SearchJobs(ctx, p))
}

// RelatedJobsTool finds jobs similar to a given one
type RelatedJobsTool struct {
	svc *jobs.Service
}

// NewRelatedJobsTool creates a new related jobs tool
func NewRelatedJobsTool(svc *jobs.Service) *RelatedJobsTool {
	return &RelatedJobsTool{svc: svc}
}

func (t *RelatedJobsTool) Name() string {
	return "related_jobs"
}

func (t *RelatedJobsTool) Description() string {
	return `Find active jobs related to a job, identified by slug or id.
Jobs in the same category come first, then shared tags, then the same location, then the newest jobs.`
}

func (t *RelatedJobsTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"job":   stringProp("Slug or id of the reference job"),
		"count": intProp("Number of related jobs, default 3"),
	}, "job")
}

// RelatedJobsInput is the input of related_jobs
type RelatedJobsInput struct {
	Job   string `json:"job"`
	Count int    `json:"count"`
}

func (t *RelatedJobsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in RelatedJobsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid input: %v", err))
	}
	if in.Job == "" {
		return NewErrorResult("job is required")
	}
	if in.Count < 1 {
		in.Count = 3
	}

	related, err := t.svc.RelatedJobs(ctx, in.Job, in.Count)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("related jobs failed: %v", err))
	}
	return NewSuccessResult(models.RelatedJobsResponse{Jobs: related})
}
