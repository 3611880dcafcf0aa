// Package jobs holds the job-board read and write paths: paginated search,
// related jobs, duplicate detection, admin CRUD, imports and click tracking.
// Public read paths fail soft: backend errors are logged and turned into an
// empty result.
package jobs

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// LinkChecker probes an application URL
type LinkChecker interface {
	Check(ctx context.Context, url string) (bool, string)
}

// Classifier fills in category and experience for a job whose keywords
// did not identify one
type Classifier interface {
	Classify(ctx context.Context, job models.Job) (models.Category, models.Experience, error)
}

// Service is the job-board business layer
type Service struct {
	db         storage.Backend
	cache      *storage.Cache
	checker    LinkChecker
	classifier Classifier
	related    *Resolver

	probeTimeout time.Duration
	probes       sync.WaitGroup
}

// NewService creates a Service. cache and checker may be nil.
func NewService(db storage.Backend, cache *storage.Cache, checker LinkChecker) *Service {
	return &Service{
		db:           db,
		cache:        cache,
		checker:      checker,
		related:      NewResolver(db),
		probeTimeout: 10 * time.Second,
	}
}

// SetClassifier enables AI classification of imported jobs
func (s *Service) SetClassifier(c Classifier) {
	s.classifier = c
}

// Wait blocks until every pending link probe has finished
func (s *Service) Wait() {
	s.probes.Wait()
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.Warnf("[Stats] cache invalidation failed: %v", err)
	}
}
