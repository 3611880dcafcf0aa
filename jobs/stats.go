package jobs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jobboard/backend/models"
)

const (
	statsCacheKey = "stats:site"
	statsCacheTTL = 5 * time.Minute
)

// Stats counts active jobs, distinct companies and remote jobs. The three
// lookups run in parallel; any failure yields zeroed stats.
func (s *Service) Stats(ctx context.Context) models.SiteStats {
	var cached models.SiteStats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err != nil {
		log.Warnf("[Stats] cache read failed: %v", err)
	} else if hit {
		return cached
	}

	var stats models.SiteStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.db.Count(gctx, activeJobs())
		stats.TotalJobs = n
		return err
	})
	g.Go(func() error {
		rows, err := s.db.Select(gctx, activeJobs())
		if err != nil {
			return err
		}
		companies := make(map[string]bool, len(rows))
		for _, row := range rows {
			if name, ok := row["company"].(string); ok && name != "" {
				companies[name] = true
			}
		}
		stats.Companies = len(companies)
		return nil
	})
	g.Go(func() error {
		n, err := s.db.Count(gctx, activeJobs().Eq("is_remote", true))
		stats.RemoteJobs = n
		return err
	})

	if err := g.Wait(); err != nil {
		log.Errorf("[Stats] failed: %v", err)
		return models.SiteStats{}
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		log.Warnf("[Stats] cache write failed: %v", err)
	}
	return stats
}
