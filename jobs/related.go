package jobs

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// DefaultRelatedCount is how many related jobs a job page shows
const DefaultRelatedCount = 12

// Provider proposes related-job candidates for one relevance criterion.
// exclude holds the reference id and every id already collected; limit is
// the remaining deficit.
type Provider interface {
	Name() string
	Candidates(ctx context.Context, ref models.Job, exclude []string, limit int) ([]models.Job, error)
}

// Resolver runs providers in order until it has enough jobs
type Resolver struct {
	providers []Provider
}

// NewResolver builds the category, tags, location, recency chain over db
func NewResolver(db storage.Backend) *Resolver {
	return NewResolverWith(
		CategoryProvider{DB: db},
		TagProvider{DB: db},
		LocationProvider{DB: db},
		RecentProvider{DB: db},
	)
}

// NewResolverWith builds a resolver over a custom provider chain
func NewResolverWith(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Resolve returns up to n active jobs related to ref, never ref itself.
// A failing provider counts as finding nothing.
func (r *Resolver) Resolve(ctx context.Context, ref models.Job, n int) []models.Job {
	if n <= 0 {
		n = DefaultRelatedCount
	}

	seen := map[string]bool{ref.ID: true}
	exclude := []string{ref.ID}
	out := make([]models.Job, 0, n)

	for _, p := range r.providers {
		deficit := n - len(out)
		if deficit <= 0 {
			break
		}

		found, err := p.Candidates(ctx, ref, exclude, deficit)
		if err != nil {
			log.WithField("job", ref.ID).Warnf("[Related] %s pass failed: %v", p.Name(), err)
			continue
		}

		for _, job := range found {
			if len(out) == n {
				break
			}
			if seen[job.ID] {
				continue
			}
			seen[job.ID] = true
			exclude = append(exclude, job.ID)
			out = append(out, job)
		}
	}
	return out
}

// RelatedJobs resolves related jobs for the active job with the given slug or id
func (s *Service) RelatedJobs(ctx context.Context, slugOrID string, n int) ([]models.Job, error) {
	ref, err := s.GetPublicJob(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	return s.related.Resolve(ctx, ref, n), nil
}

// RelatedTo resolves related jobs for an already loaded job
func (s *Service) RelatedTo(ctx context.Context, ref models.Job, n int) []models.Job {
	return s.related.Resolve(ctx, ref, n)
}

func candidateQuery(exclude []string, limit int) *storage.Query {
	return storage.From(storage.TableJobs).
		Eq("is_active", true).
		NotIn("id", anySlice(exclude)...).
		Order("created_at", true).
		Take(limit)
}

func fetchJobs(ctx context.Context, db storage.Backend, q *storage.Query) ([]models.Job, error) {
	rows, err := db.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	jobs, err := storage.DecodeJobs(rows)
	if err != nil {
		log.Warnf("[Related] skipped undecodable rows: %v", err)
	}
	return jobs, nil
}

// CategoryProvider matches jobs in the same category
type CategoryProvider struct{ DB storage.Backend }

// Name implements Provider
func (CategoryProvider) Name() string { return "category" }

// Candidates implements Provider
func (p CategoryProvider) Candidates(ctx context.Context, ref models.Job, exclude []string, limit int) ([]models.Job, error) {
	if ref.Category == "" {
		return nil, nil
	}
	q := candidateQuery(exclude, limit).Eq("category", string(ref.Category))
	jobs, err := fetchJobs(ctx, p.DB, q)
	if err != nil {
		return nil, fmt.Errorf("category candidates: %w", err)
	}
	return jobs, nil
}

// TagProvider matches jobs sharing at least one tag
type TagProvider struct{ DB storage.Backend }

// Name implements Provider
func (TagProvider) Name() string { return "tags" }

// Candidates implements Provider
func (p TagProvider) Candidates(ctx context.Context, ref models.Job, exclude []string, limit int) ([]models.Job, error) {
	if len(ref.Tags) == 0 {
		return nil, nil
	}
	q := candidateQuery(exclude, limit).Overlaps("tags", ref.Tags)
	jobs, err := fetchJobs(ctx, p.DB, q)
	if err != nil {
		return nil, fmt.Errorf("tag candidates: %w", err)
	}
	return jobs, nil
}

// LocationProvider matches jobs whose location contains the reference's
// primary location, e.g. "San Francisco" for "San Francisco, CA"
type LocationProvider struct{ DB storage.Backend }

// Name implements Provider
func (LocationProvider) Name() string { return "location" }

// Candidates implements Provider
func (p LocationProvider) Candidates(ctx context.Context, ref models.Job, exclude []string, limit int) ([]models.Job, error) {
	primary := models.PrimaryLocation(ref.Location)
	if primary == "" {
		return nil, nil
	}
	q := candidateQuery(exclude, limit).IContains("location", primary)
	jobs, err := fetchJobs(ctx, p.DB, q)
	if err != nil {
		return nil, fmt.Errorf("location candidates: %w", err)
	}
	return jobs, nil
}

// RecentProvider returns the newest active jobs
type RecentProvider struct{ DB storage.Backend }

// Name implements Provider
func (RecentProvider) Name() string { return "recent" }

// Candidates implements Provider
func (p RecentProvider) Candidates(ctx context.Context, ref models.Job, exclude []string, limit int) ([]models.Job, error) {
	jobs, err := fetchJobs(ctx, p.DB, candidateQuery(exclude, limit))
	if err != nil {
		return nil, fmt.Errorf("recent candidates: %w", err)
	}
	return jobs, nil
}
