package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

func TestPostgresSelectStatement(t *testing.T) {
	q := storage.From(storage.TableJobs).
		Eq("is_active", true).
		Or(storage.IContains("title", "go"), storage.IContains("company", "go")).
		In("category", "backend", "devops").
		NotIn("id", "a", "b").
		Order("created_at", true).
		Range(12, 23)

	sql, vars, err := storage.DryRunSelect(q)
	if err != nil {
		t.Fatalf("DryRunSelect: %v", err)
	}

	for _, want := range []string{
		`FROM "jobs" WHERE is_active = $1`,
		`(title ILIKE $2 ESCAPE '\' OR company ILIKE $3 ESCAPE '\')`,
		`category IN ($4,$5)`,
		`id NOT IN ($6,$7)`,
		`ORDER BY created_at DESC NULLS LAST`,
		`LIMIT`,
		`OFFSET`,
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql %q missing %q", sql, want)
		}
	}
	if len(vars) < 7 || vars[1] != "%go%" || vars[3] != "backend" {
		t.Errorf("vars = %v", vars)
	}
}

func TestPostgresSalaryOrderNullsLast(t *testing.T) {
	for _, desc := range []bool{true, false} {
		sql, _, err := storage.DryRunSelect(storage.From(storage.TableJobs).Order("salary_min", desc))
		if err != nil {
			t.Fatalf("DryRunSelect: %v", err)
		}
		want := "salary_min ASC NULLS LAST"
		if desc {
			want = "salary_min DESC NULLS LAST"
		}
		if !strings.Contains(sql, want) {
			t.Errorf("sql %q missing %q", sql, want)
		}
	}
}

func TestPostgresOverlapsBindsOneArray(t *testing.T) {
	sql, vars, err := storage.DryRunSelect(storage.From(storage.TableJobs).Overlaps("tags", []string{"react", "go"}))
	if err != nil {
		t.Fatalf("DryRunSelect: %v", err)
	}
	if !strings.Contains(sql, "tags && $1::text[]") {
		t.Errorf("sql = %s", sql)
	}
	if len(vars) != 1 {
		t.Errorf("vars = %v, want one array parameter", vars)
	}
}

func TestPostgresEscapesWildcards(t *testing.T) {
	_, vars, err := storage.DryRunSelect(storage.From(storage.TableJobs).IContains("title", "100%_done"))
	if err != nil {
		t.Fatalf("DryRunSelect: %v", err)
	}
	if len(vars) != 1 || vars[0] != `%100\%\_done%` {
		t.Errorf("vars = %v", vars)
	}
}

func TestEmptyInMatchesNothing(t *testing.T) {
	sql, _, err := storage.DryRunSelect(storage.From(storage.TableJobs).In("category"))
	if err != nil {
		t.Fatalf("DryRunSelect: %v", err)
	}
	if !strings.Contains(sql, "WHERE 1 = 0") {
		t.Errorf("sql = %s", sql)
	}
}

func TestSQLiteArrayPredicates(t *testing.T) {
	tests := []struct {
		pred     storage.Predicate
		wantSQL  string
		wantArgs int
	}{
		{
			storage.Predicate{Column: "tags", Op: storage.OpOverlaps, Values: []any{"react", "go"}},
			"EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value IN ?)", 1,
		},
		{
			storage.Predicate{Column: "tags", Op: storage.OpAnyContains, Value: "Rea"},
			`EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value LIKE ? ESCAPE '\')`, 1,
		},
		{storage.IContains("title", "go"), `title LIKE ? ESCAPE '\'`, 1},
		{storage.Eq("company_logo", nil), "company_logo IS NULL", 0},
	}
	for _, tt := range tests {
		sql, args, err := storage.SQLitePredicate(tt.pred)
		if err != nil {
			t.Fatalf("SQLitePredicate(%+v): %v", tt.pred, err)
		}
		if sql != tt.wantSQL || len(args) != tt.wantArgs {
			t.Errorf("got %q %v, want %q with %d args", sql, args, tt.wantSQL, tt.wantArgs)
		}
	}
}

func TestRejectsBadIdentifiers(t *testing.T) {
	bad := []*storage.Query{
		storage.From("jobs; drop table jobs"),
		storage.From(storage.TableJobs).Eq("title = 1 OR 1", "x"),
		storage.From(storage.TableJobs).Order("created_at desc", false),
	}
	for i, q := range bad {
		if _, _, err := storage.DryRunSelect(q); !errors.Is(err, storage.ErrInvalidQuery) {
			t.Errorf("case %d: err = %v, want ErrInvalidQuery", i, err)
		}
	}
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, j := range []models.Job{
		{ID: "none", Title: "Intern", Company: "A", IsActive: true, Tags: []string{"Go"}, CreatedAt: base},
		{ID: "low", Title: "Dev", Company: "B", IsActive: true, Salary: &models.Salary{Min: 40000, Max: 50000}, Tags: []string{"React"}, CreatedAt: base},
		{ID: "high", Title: "Lead", Company: "C", IsActive: false, Salary: &models.Salary{Min: 90000, Max: 120000}, CreatedAt: base},
	} {
		j.Slug = models.GenerateSlug(j.Title, j.Company)
		j.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.Insert(ctx, storage.TableJobs, storage.EncodeJob(j)); err != nil {
			t.Fatalf("Insert %s: %v", j.ID, err)
		}
	}

	rows, err := db.Select(ctx, storage.From(storage.TableJobs).Order("salary_min", true))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := ids(rows); len(got) != 3 || got[0] != "high" || got[2] != "none" {
		t.Errorf("salary desc got %v, want [high low none]", got)
	}

	rows, err = db.Select(ctx, storage.From(storage.TableJobs).Overlaps("tags", []string{"react"}))
	if err != nil {
		t.Fatalf("Select overlaps: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("overlaps got %v, want [low]", ids(rows))
	}
	job, err := storage.DecodeJob(rows[0])
	if err != nil {
		t.Fatalf("DecodeJob: %v", err)
	}
	if job.ID != "low" || len(job.Tags) != 1 || job.Tags[0] != "React" || job.Salary == nil || job.Salary.Min != 40000 {
		t.Errorf("job = %+v", job)
	}

	n, err := db.Update(ctx, storage.From(storage.TableJobs).Eq("id", "none"), storage.Row{"is_active": false})
	if err != nil || n != 1 {
		t.Fatalf("Update = %d, %v", n, err)
	}
	active, err := db.Count(ctx, storage.From(storage.TableJobs).Eq("is_active", true))
	if err != nil || active != 1 {
		t.Errorf("Count = %d, %v; want 1", active, err)
	}

	n, err = db.Delete(ctx, storage.From(storage.TableJobs).Eq("is_active", false))
	if err != nil || n != 2 {
		t.Errorf("Delete = %d, %v; want 2", n, err)
	}
}
