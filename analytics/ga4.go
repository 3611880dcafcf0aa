// Package analytics proxies a fixed set of Google Analytics 4 reports for
// the admin dashboard.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

// Report names
const (
	ReportOverview  = "overview"
	ReportTraffic   = "traffic"
	ReportDevices   = "devices"
	ReportCountries = "countries"
	ReportPages     = "pages"
)

var (
	// ErrUnknownReport is returned for a report name outside the canned set
	ErrUnknownReport = errors.New("unknown report")
	// ErrInvalidDate is returned for a malformed start or end date
	ErrInvalidDate = errors.New("invalid date")
	// ErrNotConfigured is returned when no GA4 property is set up
	ErrNotConfigured = errors.New("analytics not configured")
)

// ReportRunner executes a GA4 Data API report
type ReportRunner interface {
	RunReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
}

type ga4Runner struct {
	svc      *analyticsdata.Service
	property string
}

// NewGA4Runner creates a runner for cfg.GA4PropertyID. Credentials come from
// GA4_CREDENTIALS_FILE, or application default credentials when unset.
func NewGA4Runner(ctx context.Context, cfg *config.Config) (ReportRunner, error) {
	if cfg.GA4PropertyID == "" {
		return nil, ErrNotConfigured
	}

	var opts []option.ClientOption
	if cfg.GA4CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GA4CredentialsFile))
	}
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}

	return &ga4Runner{svc: svc, property: "properties/" + cfg.GA4PropertyID}, nil
}

func (r *ga4Runner) RunReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	return r.svc.Properties.RunReport(r.property, req).Context(ctx).Do()
}

// Service builds the dashboard reports
type Service struct {
	runner   ReportRunner
	cache    *storage.Cache
	cacheTTL time.Duration
}

// NewService creates a Service. runner may be nil, in which case only the
// mock overview is available; cache may be nil.
func NewService(runner ReportRunner, cache *storage.Cache) *Service {
	return &Service{runner: runner, cache: cache, cacheTTL: 10 * time.Minute}
}

// Reports lists the supported report names
func Reports() []string {
	return []string{ReportOverview, ReportTraffic, ReportDevices, ReportCountries, ReportPages}
}

// ga4 accepts YYYY-MM-DD, today, yesterday and NdaysAgo
var dateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|today|yesterday|\d+daysAgo)$`)

// Run executes the named report. A failing overview degrades to mock data.
func (s *Service) Run(ctx context.Context, req models.AnalyticsRequest) (interface{}, error) {
	report := strings.ToLower(strings.TrimSpace(req.Report))
	spec, ok := reportSpecs[report]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, req.Report)
	}

	start, end := req.StartDate, req.EndDate
	if start == "" {
		start = "30daysAgo"
	}
	if end == "" {
		end = "today"
	}
	if !dateRe.MatchString(start) || !dateRe.MatchString(end) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidDate, start, end)
	}

	key := fmt.Sprintf("ga4:%s:%s:%s", report, start, end)
	if report == ReportOverview {
		var cached Overview
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
		overview, err := s.overview(ctx, start, end)
		if err != nil {
			log.WithField("report", report).Warnf("[GA4] overview failed, serving mock data: %v", err)
			return MockOverview(start, end), nil
		}
		s.store(ctx, key, overview)
		return overview, nil
	}

	var cached Breakdown
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}
	breakdown, err := s.breakdown(ctx, report, spec, start, end)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, breakdown)
	return breakdown, nil
}

func (s *Service) store(ctx context.Context, key string, v interface{}) {
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
		log.Warnf("[GA4] cache write failed: %v", err)
	}
}

func (s *Service) run(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	if s.runner == nil {
		return nil, ErrNotConfigured
	}
	resp, err := s.runner.RunReport(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to run report: %w", err)
	}
	return resp, nil
}
