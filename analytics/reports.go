package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// Overview is the headline dashboard report
// @Description GA4 overview report
type Overview struct {
	StartDate          string       `json:"startDate"`
	EndDate            string       `json:"endDate"`
	ActiveUsers        int64        `json:"activeUsers"`
	Sessions           int64        `json:"sessions"`
	PageViews          int64        `json:"pageViews"`
	BounceRate         float64      `json:"bounceRate"`
	AvgSessionDuration float64      `json:"avgSessionDuration"` // seconds
	Daily              []DailyPoint `json:"daily"`
	Mock               bool         `json:"mock"`
}

// DailyPoint is one day of the overview chart
type DailyPoint struct {
	Date        string `json:"date"`
	ActiveUsers int64  `json:"activeUsers"`
	Sessions    int64  `json:"sessions"`
	PageViews   int64  `json:"pageViews"`
}

// Breakdown is a report split by a single dimension
// @Description GA4 breakdown report
type Breakdown struct {
	Report    string         `json:"report"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Rows      []BreakdownRow `json:"rows"`
	Total     int64          `json:"total"`
}

// BreakdownRow is one dimension value. Share is the fraction of Total.
type BreakdownRow struct {
	Label     string  `json:"label"`
	Users     int64   `json:"users"`
	Sessions  int64   `json:"sessions"`
	PageViews int64   `json:"pageViews"`
	Share     float64 `json:"share"`
}

type reportSpec struct {
	dimension string
	orderBy   string
	limit     int64
}

var breakdownMetrics = []string{"activeUsers", "sessions", "screenPageViews"}

var overviewMetrics = []string{"activeUsers", "sessions", "screenPageViews", "bounceRate", "averageSessionDuration"}

var reportSpecs = map[string]reportSpec{
	ReportOverview:  {dimension: "date"},
	ReportTraffic:   {dimension: "sessionDefaultChannelGroup", orderBy: "sessions", limit: 10},
	ReportDevices:   {dimension: "deviceCategory", orderBy: "sessions", limit: 5},
	ReportCountries: {dimension: "country", orderBy: "activeUsers", limit: 10},
	ReportPages:     {dimension: "pagePath", orderBy: "screenPageViews", limit: 10},
}

func metrics(names []string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, len(names))
	for i, n := range names {
		out[i] = &analyticsdata.Metric{Name: n}
	}
	return out
}

func (s *Service) overview(ctx context.Context, start, end string) (Overview, error) {
	resp, err := s.run(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: start, EndDate: end}},
		Dimensions: []*analyticsdata.Dimension{{Name: "date"}},
		Metrics:    metrics(overviewMetrics),
		OrderBys:   []*analyticsdata.OrderBy{{Dimension: &analyticsdata.DimensionOrderBy{DimensionName: "date"}}},
	})
	if err != nil {
		return Overview{}, err
	}
	return processOverview(resp, start, end)
}

// processOverview sums the daily rows. Bounce rate and session duration
// are averaged weighted by sessions.
func processOverview(resp *analyticsdata.RunReportResponse, start, end string) (Overview, error) {
	out := Overview{StartDate: start, EndDate: end, Daily: []DailyPoint{}}
	var bounceWeighted, durationWeighted float64

	for i, row := range resp.Rows {
		values, err := rowValues(row, len(overviewMetrics))
		if err != nil {
			return Overview{}, fmt.Errorf("row %d: %w", i, err)
		}
		if len(row.DimensionValues) == 0 {
			return Overview{}, fmt.Errorf("row %d: missing date", i)
		}

		point := DailyPoint{
			Date:        formatDate(row.DimensionValues[0].Value),
			ActiveUsers: int64(values[0]),
			Sessions:    int64(values[1]),
			PageViews:   int64(values[2]),
		}
		out.Daily = append(out.Daily, point)
		out.ActiveUsers += point.ActiveUsers
		out.Sessions += point.Sessions
		out.PageViews += point.PageViews
		bounceWeighted += values[3] * values[1]
		durationWeighted += values[4] * values[1]
	}

	if out.Sessions > 0 {
		out.BounceRate = round(bounceWeighted/float64(out.Sessions), 4)
		out.AvgSessionDuration = round(durationWeighted/float64(out.Sessions), 1)
	}
	return out, nil
}

func (s *Service) breakdown(ctx context.Context, report string, spec reportSpec, start, end string) (Breakdown, error) {
	resp, err := s.run(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: start, EndDate: end}},
		Dimensions: []*analyticsdata.Dimension{{Name: spec.dimension}},
		Metrics:    metrics(breakdownMetrics),
		OrderBys:   []*analyticsdata.OrderBy{{Metric: &analyticsdata.MetricOrderBy{MetricName: spec.orderBy}, Desc: true}},
		Limit:      spec.limit,
	})
	if err != nil {
		return Breakdown{}, err
	}
	return processBreakdown(resp, report, spec, start, end)
}

func processBreakdown(resp *analyticsdata.RunReportResponse, report string, spec reportSpec, start, end string) (Breakdown, error) {
	out := Breakdown{Report: report, StartDate: start, EndDate: end, Rows: []BreakdownRow{}}

	for i, row := range resp.Rows {
		values, err := rowValues(row, len(breakdownMetrics))
		if err != nil {
			return Breakdown{}, fmt.Errorf("row %d: %w", i, err)
		}
		label := "(not set)"
		if len(row.DimensionValues) > 0 && row.DimensionValues[0].Value != "" {
			label = row.DimensionValues[0].Value
		}
		r := BreakdownRow{
			Label:     label,
			Users:     int64(values[0]),
			Sessions:  int64(values[1]),
			PageViews: int64(values[2]),
		}
		out.Rows = append(out.Rows, r)
		out.Total += primary(r, spec.orderBy)
	}

	if out.Total > 0 {
		for i := range out.Rows {
			out.Rows[i].Share = round(float64(primary(out.Rows[i], spec.orderBy))/float64(out.Total), 4)
		}
	}
	return out, nil
}

func primary(r BreakdownRow, metric string) int64 {
	switch metric {
	case "activeUsers":
		return r.Users
	case "screenPageViews":
		return r.PageViews
	default:
		return r.Sessions
	}
}

func rowValues(row *analyticsdata.Row, want int) ([]float64, error) {
	if len(row.MetricValues) < want {
		return nil, fmt.Errorf("expected %d metrics, got %d", want, len(row.MetricValues))
	}
	out := make([]float64, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(row.MetricValues[i].Value, 64)
		if err != nil {
			return nil, fmt.Errorf("metric %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// formatDate turns GA4's YYYYMMDD into YYYY-MM-DD
func formatDate(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[:4] + "-" + raw[4:6] + "-" + raw[6:]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// MockOverview is served when the live overview cannot be produced
func MockOverview(start, end string) Overview {
	daily := []DailyPoint{
		{Date: "day-1", ActiveUsers: 120, Sessions: 150, PageViews: 420},
		{Date: "day-2", ActiveUsers: 135, Sessions: 170, PageViews: 465},
		{Date: "day-3", ActiveUsers: 98, Sessions: 121, PageViews: 330},
	}
	out := Overview{
		StartDate:          start,
		EndDate:            end,
		Daily:              daily,
		BounceRate:         0.42,
		AvgSessionDuration: 95.5,
		Mock:               true,
	}
	for _, d := range daily {
		out.ActiveUsers += d.ActiveUsers
		out.Sessions += d.Sessions
		out.PageViews += d.PageViews
	}
	return out
}
