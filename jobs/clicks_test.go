package jobs_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/storage"
)

type fakeChecker struct {
	mu     sync.Mutex
	broken map[string]bool
	seen   []string
}

func (f *fakeChecker) Check(ctx context.Context, url string) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, url)
	if f.broken[url] {
		return false, "HTTP 404"
	}
	return true, ""
}

func TestRecordClickProbesLink(t *testing.T) {
	mem := storage.NewMemoryBackend()
	checker := &fakeChecker{broken: map[string]bool{"https://example.com/apply/dead": true}}
	svc := jobs.NewService(mem, nil, checker)
	seedJobs(t, mem, job("live", 1), job("dead", 2), job("hidden", 3, inactive))
	ctx := context.Background()

	for _, id := range []string{"live", "live", "dead"} {
		if _, err := svc.RecordClick(ctx, id, "Mozilla/5.0", "https://news.example"); err != nil {
			t.Fatalf("RecordClick(%s): %v", id, err)
		}
	}
	if _, err := svc.RecordClick(ctx, "hidden", "", ""); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("click on inactive job err = %v, want ErrNotFound", err)
	}
	svc.Wait()

	if len(checker.seen) != 3 {
		t.Errorf("checked %d links, want 3", len(checker.seen))
	}

	stats, err := svc.ClickStats(ctx)
	if err != nil {
		t.Fatalf("ClickStats: %v", err)
	}
	if stats.TotalClicks != 3 || stats.InvalidLinks != 1 || stats.PendingLinks != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.ByJob) != 2 || stats.ByJob[0].JobID != "live" || stats.ByJob[0].Clicks != 2 {
		t.Errorf("byJob = %+v", stats.ByJob)
	}
	if len(stats.Recent) != 3 {
		t.Fatalf("recent = %d, want 3", len(stats.Recent))
	}
	for _, c := range stats.Recent {
		if c.IsValid == nil {
			t.Errorf("click %s still pending", c.ID)
			continue
		}
		if c.JobID == "dead" && (*c.IsValid || !strings.Contains(c.ErrorMessage, "404")) {
			t.Errorf("dead click = valid %v, message %q", *c.IsValid, c.ErrorMessage)
		}
	}
}

func TestRecordClickWithoutChecker(t *testing.T) {
	svc, mem := newService(t)
	seedJobs(t, mem, job("a", 1))

	click, err := svc.RecordClick(context.Background(), "role-a-at-company-a", "", "")
	if err != nil {
		t.Fatalf("RecordClick by slug: %v", err)
	}
	if click.JobID != "a" {
		t.Errorf("jobId = %q", click.JobID)
	}

	stats, err := svc.ClickStats(context.Background())
	if err != nil {
		t.Fatalf("ClickStats: %v", err)
	}
	if stats.PendingLinks != 1 || stats.InvalidLinks != 0 {
		t.Errorf("stats = %+v, want one pending click", stats)
	}
}
