package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

func seed(t *testing.T, mem *storage.MemoryBackend, jobs ...models.Job) {
	t.Helper()
	for _, j := range jobs {
		if err := mem.Insert(context.Background(), storage.TableJobs, storage.EncodeJob(j)); err != nil {
			t.Fatalf("insert %s: %v", j.ID, err)
		}
	}
}

func TestMemoryBackendFilterOrderRange(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, mem,
		models.Job{ID: "a", Title: "Go Engineer", IsActive: true, Tags: []string{"Go"}, CreatedAt: base},
		models.Job{ID: "b", Title: "React Dev", IsActive: true, Tags: []string{"React", "TypeScript"}, CreatedAt: base.Add(time.Hour)},
		models.Job{ID: "c", Title: "GO Lead", IsActive: false, CreatedAt: base.Add(2 * time.Hour)},
		models.Job{ID: "d", Title: "Golang SRE", IsActive: true, CreatedAt: base.Add(3 * time.Hour)},
	)

	q := storage.From(storage.TableJobs).Eq("is_active", true).IContains("title", "go").Order("created_at", true)
	rows, err := mem.Select(ctx, q)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 || rows[0]["id"] != "d" || rows[1]["id"] != "a" {
		t.Errorf("got %v, want [d a]", ids(rows))
	}

	n, err := mem.Count(ctx, q)
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v; want 2", n, err)
	}

	page, _ := mem.Select(ctx, storage.From(storage.TableJobs).Order("created_at", false).Range(1, 2))
	if len(page) != 2 || page[0]["id"] != "b" || page[1]["id"] != "c" {
		t.Errorf("range got %v, want [b c]", ids(page))
	}

	past, _ := mem.Select(ctx, storage.From(storage.TableJobs).Range(10, 19))
	if len(past) != 0 {
		t.Errorf("range past end returned %d rows", len(past))
	}
}

func TestMemoryBackendArrayOps(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryBackend()
	seed(t, mem,
		models.Job{ID: "a", Tags: []string{"Go", "Kubernetes"}},
		models.Job{ID: "b", Tags: []string{"React"}},
		models.Job{ID: "c"},
	)

	rows, _ := mem.Select(ctx, storage.From(storage.TableJobs).Overlaps("tags", []string{"React", "Rust"}))
	if len(rows) != 1 || rows[0]["id"] != "b" {
		t.Errorf("overlaps got %v, want [b]", ids(rows))
	}

	rows, _ = mem.Select(ctx, storage.From(storage.TableJobs).AnyContains("tags", "kube"))
	if len(rows) != 1 || rows[0]["id"] != "a" {
		t.Errorf("any contains got %v, want [a]", ids(rows))
	}

	rows, _ = mem.Select(ctx, storage.From(storage.TableJobs).NotIn("id", "a", "b"))
	if len(rows) != 1 || rows[0]["id"] != "c" {
		t.Errorf("not in got %v, want [c]", ids(rows))
	}
}

func TestMemoryBackendSalaryNullsLast(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryBackend()
	seed(t, mem,
		models.Job{ID: "none"},
		models.Job{ID: "low", Salary: &models.Salary{Min: 40000, Max: 50000}},
		models.Job{ID: "high", Salary: &models.Salary{Min: 90000, Max: 120000}},
	)

	tests := []struct {
		desc bool
		want []any
	}{
		{true, []any{"high", "low", "none"}},
		{false, []any{"low", "high", "none"}},
	}
	for _, tt := range tests {
		rows, err := mem.Select(ctx, storage.From(storage.TableJobs).Order("salary_min", tt.desc))
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if got := ids(rows); fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("desc=%v got %v, want %v", tt.desc, got, tt.want)
		}
	}
}

func TestMemoryBackendUpdateDelete(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryBackend()
	seed(t, mem, models.Job{ID: "a", IsActive: true}, models.Job{ID: "b", IsActive: true})

	n, err := mem.Update(ctx, storage.From(storage.TableJobs).Eq("id", "a"), storage.Row{"is_active": false})
	if err != nil || n != 1 {
		t.Fatalf("Update = %d, %v", n, err)
	}
	active, _ := mem.Count(ctx, storage.From(storage.TableJobs).Eq("is_active", true))
	if active != 1 {
		t.Errorf("active = %d, want 1", active)
	}

	n, err = mem.Delete(ctx, storage.From(storage.TableJobs).Eq("id", "b"))
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	total, _ := mem.Count(ctx, storage.From(storage.TableJobs))
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}

	if err := mem.Insert(ctx, storage.TableJobs, storage.Row{"id": "a"}); err == nil {
		t.Error("duplicate id insert succeeded")
	}
}

func TestMemoryBackendFail(t *testing.T) {
	mem := storage.NewMemoryBackend()
	mem.Fail = errors.New("down")
	if _, err := mem.Select(context.Background(), storage.From(storage.TableJobs)); err == nil {
		t.Error("Select succeeded on failing backend")
	}
}

func ids(rows []storage.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}
