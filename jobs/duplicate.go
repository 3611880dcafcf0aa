package jobs

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// CheckJobExists reports whether an active job already matches the
// candidate by (title, company), then application URL, then derived slug.
// The first hit wins.
//
// The check is advisory: nothing stops two concurrent submissions from
// both passing it before either is inserted.
func (s *Service) CheckJobExists(ctx context.Context, title, company, applicationURL string) (bool, error) {
	title = strings.TrimSpace(title)
	company = strings.TrimSpace(company)
	applicationURL = strings.TrimSpace(applicationURL)

	checks := []*storage.Query{
		activeJobs().Eq("title", title).Eq("company", company),
	}
	if applicationURL != "" {
		checks = append(checks, activeJobs().Eq("application_url", applicationURL))
	}
	if slug := models.GenerateSlug(title, company); slug != "-at-" {
		checks = append(checks, activeJobs().Eq("slug", slug))
	}

	for _, q := range checks {
		rows, err := s.db.Select(ctx, q.Take(1))
		if err != nil {
			return false, fmt.Errorf("duplicate check: %w", err)
		}
		if len(rows) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// JobExists is CheckJobExists with backend errors logged and reported as
// "no duplicate"
func (s *Service) JobExists(ctx context.Context, title, company, applicationURL string) bool {
	exists, err := s.CheckJobExists(ctx, title, company, applicationURL)
	if err != nil {
		log.Errorf("[Jobs] %v", err)
		return false
	}
	return exists
}

func activeJobs() *storage.Query {
	return storage.From(storage.TableJobs).Eq("is_active", true)
}
