package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/scheduler"
)

type recorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *recorder) Refresh(ctx context.Context, query string) (models.ExternalJobsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if query == "broken" {
		return models.ExternalJobsResponse{}, errors.New("boom")
	}
	return models.ExternalJobsResponse{Total: 1}, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func TestRunOnce(t *testing.T) {
	rec := &recorder{}
	s := scheduler.New(rec, []string{"golang", "broken", "react"}, "@every 1h")

	if ok := s.RunOnce(context.Background()); ok != 2 {
		t.Errorf("RunOnce = %d, want 2", ok)
	}
	if rec.count() != 3 {
		t.Errorf("refreshed %v", rec.queries)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if ok := s.RunOnce(ctx); ok != 0 {
		t.Errorf("cancelled RunOnce = %d", ok)
	}
}

func TestStartRunsImmediately(t *testing.T) {
	rec := &recorder{}
	s := scheduler.New(rec, []string{"golang"}, "@every 1h")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	if rec.count() != 1 {
		t.Errorf("refreshed %d times, want 1", rec.count())
	}
}

func TestStartErrors(t *testing.T) {
	if err := scheduler.New(&recorder{}, []string{"go"}, "not a cron line").Start(context.Background()); err == nil {
		t.Error("invalid schedule accepted")
	}
	if err := scheduler.New(&recorder{}, nil, "not a cron line").Start(context.Background()); err != nil {
		t.Errorf("no queries: %v", err)
	}
}
