// Package scheduler keeps the external-jobs cache warm for the queries the
// site shows most often.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
)

// Refresher re-runs an external search and stores the result
type Refresher interface {
	Refresh(ctx context.Context, query string) (models.ExternalJobsResponse, error)
}

// Scheduler wraps robfig/cron and runs the warm-up cycle
type Scheduler struct {
	cron     *cron.Cron
	agg      Refresher
	queries  []string
	schedule string // cron expression, e.g. "@every 1h"

	running sync.WaitGroup
}

// New creates a Scheduler that refreshes queries on schedule
func New(agg Refresher, queries []string, schedule string) *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
		agg:      agg,
		queries:  queries,
		schedule: schedule,
	}
}

// Start registers the job and starts the scheduler. One cycle also runs
// immediately so the cache is populated without waiting for the first tick.
// With no queries configured Start does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.queries) == 0 {
		log.Println("[Scheduler] No warm-up queries configured")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.WithField("schedule", s.schedule).Infof("[Scheduler] Cron started for %d queries", len(s.queries))

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop waits for a running cycle and shuts the scheduler down
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.running.Wait()
	log.Println("[Scheduler] Cron stopped")
}

// RunOnce refreshes every configured query, returning how many succeeded
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ok := 0
	for _, q := range s.queries {
		if ctx.Err() != nil {
			break
		}
		resp, err := s.agg.Refresh(ctx, q)
		if err != nil {
			log.WithField("query", q).Warnf("[Scheduler] Refresh failed: %v", err)
			continue
		}
		ok++
		log.WithField("query", q).Debugf("[Scheduler] Refreshed %d jobs", resp.Total)
	}
	log.Infof("[Scheduler] Warm-up cycle complete: %d/%d queries", ok, len(s.queries))
	return ok
}
