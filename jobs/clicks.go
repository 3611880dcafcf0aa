package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
)

const recentClicksShown = 20

// RecordClick stores an "Apply" click for an active job and then checks the
// application link in the background. The caller never waits for the probe.
func (s *Service) RecordClick(ctx context.Context, slugOrID, userAgent, referrer string) (models.JobClick, error) {
	job, err := s.GetPublicJob(ctx, slugOrID)
	if err != nil {
		return models.JobClick{}, err
	}

	click := models.JobClick{
		ID:             uuid.NewString(),
		JobID:          job.ID,
		ApplicationURL: job.ApplicationURL,
		ClickedAt:      time.Now().UTC(),
		UserAgent:      userAgent,
		Referrer:       referrer,
	}
	if err := s.db.Insert(ctx, storage.TableJobClicks, storage.EncodeClick(click)); err != nil {
		return models.JobClick{}, fmt.Errorf("record click: %w", err)
	}

	if s.checker != nil && click.ApplicationURL != "" {
		s.probes.Add(1)
		go s.probeLink(click)
	}
	return click, nil
}

// probeLink runs detached from the request context, which ends with the response
func (s *Service) probeLink(click models.JobClick) {
	defer s.probes.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
	defer cancel()

	valid, msg := s.checker.Check(ctx, click.ApplicationURL)
	set := storage.Row{"is_valid": valid, "error_message": nil}
	if !valid {
		set["error_message"] = msg
	}

	if _, err := s.db.Update(ctx, storage.From(storage.TableJobClicks).Eq("id", click.ID), set); err != nil {
		log.WithField("click", click.ID).Warnf("[Clicks] failed to store link check: %v", err)
		return
	}
	if !valid {
		log.WithFields(log.Fields{"job": click.JobID, "url": click.ApplicationURL}).
			Warnf("[Clicks] application link unreachable: %s", msg)
	}
}

// ClickStats aggregates job_clicks for the admin dashboard
func (s *Service) ClickStats(ctx context.Context) (models.ClickStats, error) {
	rows, err := s.db.Select(ctx, storage.From(storage.TableJobClicks).Order("clicked_at", true))
	if err != nil {
		return models.ClickStats{}, fmt.Errorf("load clicks: %w", err)
	}

	stats := models.ClickStats{ByJob: []models.JobClickCount{}, Recent: []models.JobClick{}}
	perJob := make(map[string]int)
	for _, row := range rows {
		click, err := storage.DecodeClick(row)
		if err != nil {
			log.Warnf("[Clicks] %v", err)
			continue
		}
		stats.TotalClicks++
		perJob[click.JobID]++
		switch {
		case click.IsValid == nil:
			stats.PendingLinks++
		case !*click.IsValid:
			stats.InvalidLinks++
		}
		if len(stats.Recent) < recentClicksShown {
			stats.Recent = append(stats.Recent, click)
		}
	}

	for id, n := range perJob {
		stats.ByJob = append(stats.ByJob, models.JobClickCount{JobID: id, Clicks: n})
	}
	sort.Slice(stats.ByJob, func(i, j int) bool {
		if stats.ByJob[i].Clicks != stats.ByJob[j].Clicks {
			return stats.ByJob[i].Clicks > stats.ByJob[j].Clicks
		}
		return stats.ByJob[i].JobID < stats.ByJob[j].JobID
	})
	return stats, nil
}
