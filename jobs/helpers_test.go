package jobs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*jobs.Service, *storage.MemoryBackend) {
	t.Helper()
	mem := storage.NewMemoryBackend()
	return jobs.NewService(mem, nil, nil), mem
}

// job builds an active job created i hours after epoch
func job(id string, i int, opts ...func(*models.Job)) models.Job {
	j := models.Job{
		ID:             id,
		Title:          "Role " + id,
		Company:        "Company " + id,
		Type:           models.JobTypeFullTime,
		Category:       models.CategoryOther,
		Experience:     models.ExperienceMid,
		IsActive:       true,
		ApplicationURL: "https://example.com/apply/" + id,
		CreatedAt:      epoch.Add(time.Duration(i) * time.Hour),
		UpdatedAt:      epoch.Add(time.Duration(i) * time.Hour),
	}
	for _, opt := range opts {
		opt(&j)
	}
	j.Slug = models.GenerateSlug(j.Title, j.Company)
	return j
}

func seedJobs(t *testing.T, mem *storage.MemoryBackend, list ...models.Job) {
	t.Helper()
	for _, j := range list {
		if err := mem.Insert(context.Background(), storage.TableJobs, storage.EncodeJob(j)); err != nil {
			t.Fatalf("seed %s: %v", j.ID, err)
		}
	}
}

func jobIDs(list []models.Job) []string {
	out := make([]string, len(list))
	for i, j := range list {
		out[i] = j.ID
	}
	return out
}

func sameIDs(got []models.Job, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}

func inactive(j *models.Job) { j.IsActive = false }
func remote(j *models.Job)   { j.IsRemote = true }
func featured(j *models.Job) { j.IsFeatured = true }

func category(c models.Category) func(*models.Job) {
	return func(j *models.Job) { j.Category = c }
}
func tags(t ...string) func(*models.Job) {
	return func(j *models.Job) { j.Tags = t }
}
func location(l string) func(*models.Job) {
	return func(j *models.Job) { j.Location = l }
}
func titled(title, company string) func(*models.Job) {
	return func(j *models.Job) {
		j.Title = title
		j.Company = company
	}
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}
