package jobs

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// SearchParams is everything a listing page request carries
type SearchParams struct {
	Page      int
	Limit     int
	Filters   models.JobFilters
	SortBy    models.SortBy
	SortOrder models.SortOrder
}

// Normalized returns p with page >= 1 and a positive limit
func (p SearchParams) Normalized() SearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = models.DefaultPageSize
	}
	return p
}

// Offset is the zero-based index of the first row on the page
func (p SearchParams) Offset() int {
	p = p.Normalized()
	return (p.Page - 1) * p.Limit
}

// BuildSearchQuery translates search params into a backend query over
// active jobs. It has no side effects.
func BuildSearchQuery(p SearchParams) *storage.Query {
	return buildQuery(p, true)
}

func buildQuery(p SearchParams, activeOnly bool) *storage.Query {
	p = p.Normalized()

	q := storage.From(storage.TableJobs)
	if activeOnly {
		q.Eq("is_active", true)
	}
	applyFilters(q, p.Filters)

	column := "created_at"
	if p.SortBy == models.SortBySalary {
		column = "salary_min"
	}
	q.Order(column, p.SortOrder != models.SortAsc)

	offset := p.Offset()
	q.Range(offset, offset+p.Limit-1)
	return q
}

func applyFilters(q *storage.Query, f models.JobFilters) {
	if term := strings.TrimSpace(f.Query); term != "" {
		q.Or(
			storage.IContains("title", term),
			storage.IContains("company", term),
			storage.IContains("location", term),
		)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q.IContains("location", loc)
	}
	if len(f.Category) > 0 {
		q.In("category", anySlice(f.Category)...)
	}
	if len(f.Type) > 0 {
		q.In("type", anySlice(f.Type)...)
	}
	if len(f.Experience) > 0 {
		q.In("experience", anySlice(f.Experience)...)
	}
	// false never filters for explicitly non-remote jobs
	if f.IsRemote != nil && *f.IsRemote {
		q.Eq("is_remote", true)
	}
	if f.IsFeatured != nil && *f.IsFeatured {
		q.Eq("is_featured", true)
	}
}

// SearchJobs returns one page of active jobs. Backend errors are logged and
// produce an empty page.
func (s *Service) SearchJobs(ctx context.Context, p SearchParams) models.PageResult {
	p = p.Normalized()
	page, err := s.page(ctx, buildQuery(p, true), p)
	if err != nil {
		log.WithField("page", p.Page).Errorf("[Jobs] search failed: %v", err)
		return models.EmptyPage(p.Page)
	}
	return page
}

// AdminSearchJobs is SearchJobs including inactive jobs. Errors are returned.
func (s *Service) AdminSearchJobs(ctx context.Context, p SearchParams) (models.PageResult, error) {
	p = p.Normalized()
	return s.page(ctx, buildQuery(p, false), p)
}

func (s *Service) page(ctx context.Context, q *storage.Query, p SearchParams) (models.PageResult, error) {
	var (
		total int
		rows  []storage.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.db.Count(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.db.Select(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.EmptyPage(p.Page), err
	}

	jobs, err := storage.DecodeJobs(rows)
	if err != nil {
		log.Warnf("[Jobs] skipped undecodable rows: %v", err)
	}

	totalPages := (total + p.Limit - 1) / p.Limit
	return models.PageResult{
		Jobs:        jobs,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		HasMore:     p.Page < totalPages,
	}, nil
}

// SearchJobsText is the unpaginated keyword search: title, company or
// location matches, then any other job with a tag containing the query.
// Results are deduplicated by id.
func (s *Service) SearchJobsText(ctx context.Context, query string) []models.Job {
	query = strings.TrimSpace(query)

	base := storage.From(storage.TableJobs).Eq("is_active", true).Order("created_at", true)
	applyFilters(base, models.JobFilters{Query: query})

	rows, err := s.db.Select(ctx, base)
	if err != nil {
		log.Errorf("[Jobs] text search failed: %v", err)
		return []models.Job{}
	}

	if query != "" {
		tagged, err := s.db.Select(ctx, storage.From(storage.TableJobs).
			Eq("is_active", true).
			AnyContains("tags", query).
			Order("created_at", true))
		if err != nil {
			log.Warnf("[Jobs] tag search failed: %v", err)
		} else {
			rows = append(rows, tagged...)
		}
	}

	jobs, err := storage.DecodeJobs(rows)
	if err != nil {
		log.Warnf("[Jobs] skipped undecodable rows: %v", err)
	}
	return dedupe(jobs)
}

func dedupe(jobs []models.Job) []models.Job {
	seen := make(map[string]bool, len(jobs))
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.ID] {
			continue
		}
		seen[j.ID] = true
		out = append(out, j)
	}
	return out
}

func anySlice[T ~string](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
