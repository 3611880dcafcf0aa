package analytics_test

import (
	"context"
	"errors"
	"testing"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/jobboard/backend/analytics"
	"github.com/jobboard/backend/models"
)

type fakeRunner struct {
	resp *analyticsdata.RunReportResponse
	err  error
	last *analyticsdata.RunReportRequest
}

func (f *fakeRunner) RunReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	f.last = req
	return f.resp, f.err
}

func row(dim string, metrics ...string) *analyticsdata.Row {
	r := &analyticsdata.Row{DimensionValues: []*analyticsdata.DimensionValue{{Value: dim}}}
	for _, m := range metrics {
		r.MetricValues = append(r.MetricValues, &analyticsdata.MetricValue{Value: m})
	}
	return r
}

func TestOverview(t *testing.T) {
	runner := &fakeRunner{resp: &analyticsdata.RunReportResponse{Rows: []*analyticsdata.Row{
		row("20240501", "10", "20", "50", "0.5", "60"),
		row("20240502", "5", "10", "30", "0.2", "120"),
	}}}
	svc := analytics.NewService(runner, nil)

	got, err := svc.Run(context.Background(), models.AnalyticsRequest{Report: "overview", StartDate: "2024-05-01", EndDate: "2024-05-02"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	o, ok := got.(analytics.Overview)
	if !ok {
		t.Fatalf("got %T, want Overview", got)
	}
	if o.Mock || o.ActiveUsers != 15 || o.Sessions != 30 || o.PageViews != 80 {
		t.Errorf("totals = %+v", o)
	}
	if o.BounceRate != 0.4 || o.AvgSessionDuration != 80 {
		t.Errorf("bounce %v duration %v, want 0.4 / 80", o.BounceRate, o.AvgSessionDuration)
	}
	if len(o.Daily) != 2 || o.Daily[0].Date != "2024-05-01" {
		t.Errorf("daily = %+v", o.Daily)
	}
	if runner.last.DateRanges[0].StartDate != "2024-05-01" {
		t.Errorf("date range = %+v", runner.last.DateRanges[0])
	}
}

func TestOverviewFallsBackToMock(t *testing.T) {
	cases := []struct {
		name   string
		runner analytics.ReportRunner
	}{
		{"api error", &fakeRunner{err: errors.New("quota exceeded")}},
		{"bad metric", &fakeRunner{resp: &analyticsdata.RunReportResponse{Rows: []*analyticsdata.Row{row("20240501", "x", "1", "1", "0", "0")}}}},
		{"short row", &fakeRunner{resp: &analyticsdata.RunReportResponse{Rows: []*analyticsdata.Row{row("20240501", "1")}}}},
		{"not configured", nil},
	}
	for _, tc := range cases {
		got, err := analytics.NewService(tc.runner, nil).Run(context.Background(), models.AnalyticsRequest{Report: "overview"})
		if err != nil {
			t.Errorf("%s: err = %v", tc.name, err)
			continue
		}
		if o, ok := got.(analytics.Overview); !ok || !o.Mock || o.Sessions == 0 {
			t.Errorf("%s: got %+v, want mock overview", tc.name, got)
		}
	}
}

func TestBreakdown(t *testing.T) {
	runner := &fakeRunner{resp: &analyticsdata.RunReportResponse{Rows: []*analyticsdata.Row{
		row("/jobs", "30", "40", "300"),
		row("", "10", "12", "100"),
	}}}
	got, err := analytics.NewService(runner, nil).Run(context.Background(), models.AnalyticsRequest{Report: "Pages"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b := got.(analytics.Breakdown)
	if b.Report != "pages" || b.Total != 400 || len(b.Rows) != 2 {
		t.Fatalf("breakdown = %+v", b)
	}
	if b.Rows[0].Share != 0.75 || b.Rows[1].Label != "(not set)" {
		t.Errorf("rows = %+v", b.Rows)
	}
	if b.StartDate != "30daysAgo" || b.EndDate != "today" {
		t.Errorf("default range = %s..%s", b.StartDate, b.EndDate)
	}
	if runner.last.Dimensions[0].Name != "pagePath" || runner.last.Limit != 10 {
		t.Errorf("request = %+v", runner.last)
	}
}

func TestRunErrors(t *testing.T) {
	svc := analytics.NewService(&fakeRunner{err: errors.New("boom")}, nil)
	ctx := context.Background()

	if _, err := svc.Run(ctx, models.AnalyticsRequest{Report: "revenue"}); !errors.Is(err, analytics.ErrUnknownReport) {
		t.Errorf("unknown report err = %v", err)
	}
	if _, err := svc.Run(ctx, models.AnalyticsRequest{Report: "traffic", StartDate: "last week"}); !errors.Is(err, analytics.ErrInvalidDate) {
		t.Errorf("bad date err = %v", err)
	}
	if _, err := svc.Run(ctx, models.AnalyticsRequest{Report: "devices"}); err == nil {
		t.Error("breakdown failure not reported")
	}
	if _, err := analytics.NewService(nil, nil).Run(ctx, models.AnalyticsRequest{Report: "countries"}); !errors.Is(err, analytics.ErrNotConfigured) {
		t.Errorf("unconfigured err = %v", err)
	}
}
