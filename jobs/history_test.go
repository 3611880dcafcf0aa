package jobs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/models"
)

type stubClassifier struct {
	calls int
	err   error
}

func (s *stubClassifier) Classify(ctx context.Context, job models.Job) (models.Category, models.Experience, error) {
	s.calls++
	return models.CategoryData, "executive", s.err
}

func external(id, title, company string) models.ExternalJob {
	return models.ExternalJob{
		ID:             id,
		Title:          title,
		Company:        company,
		Type:           "Full Time",
		Category:       models.CategoryOther,
		Experience:     models.ExperienceMid,
		Description:    "<p>Work</p>",
		ApplicationURL: "https://jobs.example/" + id,
		Tags:           []string{"go", "Go"},
		Source:         "remotive",
	}
}

func TestImportJobs(t *testing.T) {
	svc, mem := newService(t)
	classifier := &stubClassifier{}
	svc.SetClassifier(classifier)
	seedJobs(t, mem, job("local", 1, titled("Data Engineer", "Acme")))
	ctx := context.Background()

	hist, err := svc.SaveSearch(ctx, "u1", "engineer", []string{"remotive"}, []models.ExternalJob{external("r1", "Go Engineer", "Beta")})
	if err != nil {
		t.Fatalf("SaveSearch: %v", err)
	}

	res, err := svc.ImportJobs(ctx, "u1", models.ImportRequest{
		HistoryID: hist.ID,
		Activate:  true,
		Jobs: []models.ExternalJob{
			external("r1", "Go Engineer", "Beta"),
			external("r2", "Data Engineer", "Acme"),
			external("r3", "", "NoTitle"),
		},
	})
	if err != nil {
		t.Fatalf("ImportJobs: %v", err)
	}
	if len(res.Imported) != 1 || len(res.Duplicates) != 1 || res.Duplicates[0] != "r2" || len(res.Failed) != 1 || res.Failed[0] != "r3" {
		t.Fatalf("result = %+v", res)
	}

	imported := res.Imported[0]
	if imported.Category != models.CategoryData || imported.Experience != models.ExperienceSenior {
		t.Errorf("classified as %s/%s, want data/senior", imported.Category, imported.Experience)
	}
	if imported.Type != models.JobTypeFullTime || !imported.IsActive {
		t.Errorf("imported = %+v", imported)
	}
	if len(imported.Tags) != 1 {
		t.Errorf("tags = %v, want one", imported.Tags)
	}
	if classifier.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", classifier.calls)
	}

	again, err := svc.ImportJobs(ctx, "u1", models.ImportRequest{Jobs: []models.ExternalJob{external("r1", "Renamed", "Elsewhere")}})
	if err != nil {
		t.Fatalf("second ImportJobs: %v", err)
	}
	if len(again.Imported) != 0 || len(again.Duplicates) != 1 {
		t.Errorf("already imported listing was not skipped: %+v", again)
	}

	records, err := svc.ListImported(ctx, "u1")
	if err != nil || len(records) != 1 || records[0].JobID != imported.ID || records[0].Source != "remotive" {
		t.Errorf("ListImported = %+v, %v", records, err)
	}

	loaded, err := svc.GetHistory(ctx, "u1", hist.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if !loaded.Imported || len(loaded.Results) != 1 {
		t.Errorf("history = %+v", loaded)
	}
}

func TestImportJobsClassifierFailureKeepsDefaults(t *testing.T) {
	svc, _ := newService(t)
	svc.SetClassifier(&stubClassifier{err: errors.New("quota")})

	res, err := svc.ImportJobs(context.Background(), "u1", models.ImportRequest{Jobs: []models.ExternalJob{external("x", "SRE", "Gamma")}})
	if err != nil {
		t.Fatalf("ImportJobs: %v", err)
	}
	if len(res.Imported) != 1 || res.Imported[0].Category != models.CategoryOther || res.Imported[0].IsActive {
		t.Errorf("result = %+v", res)
	}
}

func TestHistoryScopedByUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	mine, err := svc.SaveSearch(ctx, "u1", "go", []string{"github"}, []models.ExternalJob{external("g1", "Go Dev", "A")})
	if err != nil {
		t.Fatalf("SaveSearch: %v", err)
	}
	if _, err := svc.SaveSearch(ctx, "u2", "rust", nil, nil); err != nil {
		t.Fatalf("SaveSearch: %v", err)
	}

	list, err := svc.ListHistory(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(list) != 1 || list[0].Query != "go" || list[0].Results != nil || list[0].ResultCount != 1 {
		t.Errorf("list = %+v", list)
	}

	if _, err := svc.GetHistory(ctx, "u2", mine.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("other user's GetHistory err = %v", err)
	}
	if err := svc.DeleteHistory(ctx, "u2", mine.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("other user's DeleteHistory err = %v", err)
	}
	if err := svc.DeleteHistory(ctx, "u1", mine.ID); err != nil {
		t.Errorf("DeleteHistory: %v", err)
	}
	if _, err := svc.GetHistory(ctx, "u1", mine.ID); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("deleted history still loads: %v", err)
	}
}
