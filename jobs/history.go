package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
	"github.com/jobboard/backend/utils"
)

// SaveSearch records an admin's external search and its results
func (s *Service) SaveSearch(ctx context.Context, userID, query string, sources []string, results []models.ExternalJob) (models.SearchHistory, error) {
	h := models.SearchHistory{
		ID:          uuid.NewString(),
		UserID:      userID,
		Query:       query,
		Sources:     sources,
		ResultCount: len(results),
		Results:     results,
		CreatedAt:   time.Now().UTC(),
	}
	row, err := storage.EncodeHistory(h)
	if err != nil {
		return models.SearchHistory{}, err
	}
	if err := s.db.Insert(ctx, storage.TableSearchHistory, row); err != nil {
		return models.SearchHistory{}, fmt.Errorf("save search: %w", err)
	}
	return h, nil
}

// ListHistory returns a user's searches, newest first, without cached results
func (s *Service) ListHistory(ctx context.Context, userID string, limit int) ([]models.SearchHistory, error) {
	q := storage.From(storage.TableSearchHistory).Eq("user_id", userID).Order("created_at", true)
	if limit > 0 {
		q.Take(limit)
	}
	rows, err := s.db.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}

	out := make([]models.SearchHistory, 0, len(rows))
	for _, row := range rows {
		h, err := storage.DecodeHistory(row)
		if err != nil {
			log.Warnf("[History] %v", err)
			continue
		}
		h.Results = nil
		out = append(out, h)
	}
	return out, nil
}

// GetHistory loads one of the user's searches including cached results
func (s *Service) GetHistory(ctx context.Context, userID, id string) (models.SearchHistory, error) {
	rows, err := s.db.Select(ctx, historyQuery(userID, id).Take(1))
	if err != nil {
		return models.SearchHistory{}, fmt.Errorf("load search history: %w", err)
	}
	if len(rows) == 0 {
		return models.SearchHistory{}, ErrNotFound
	}
	return storage.DecodeHistory(rows[0])
}

// DeleteHistory removes one of the user's searches
func (s *Service) DeleteHistory(ctx context.Context, userID, id string) error {
	n, err := s.db.Delete(ctx, historyQuery(userID, id))
	if err != nil {
		return fmt.Errorf("delete search history: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func historyQuery(userID, id string) *storage.Query {
	return storage.From(storage.TableSearchHistory).Eq("user_id", userID).Eq("id", id)
}

// ImportJobs turns external listings into local jobs. Listings that
// duplicate an active job are skipped, as are listings already imported.
func (s *Service) ImportJobs(ctx context.Context, userID string, req models.ImportRequest) (models.ImportResult, error) {
	result := models.ImportResult{Imported: []models.Job{}, Duplicates: []string{}, Failed: []string{}}

	for _, ext := range req.Jobs {
		if strings.TrimSpace(ext.Title) == "" || strings.TrimSpace(ext.Company) == "" {
			result.Failed = append(result.Failed, ext.ID)
			continue
		}

		already, err := s.isImported(ctx, ext)
		if err != nil {
			return result, err
		}
		exists, err := s.CheckJobExists(ctx, ext.Title, ext.Company, ext.ApplicationURL)
		if err != nil {
			return result, err
		}
		if already || exists {
			result.Duplicates = append(result.Duplicates, ext.ID)
			continue
		}

		job, err := s.importOne(ctx, userID, ext, req.Activate)
		if err != nil {
			log.WithField("external", ext.ID).Errorf("[Import] %v", err)
			result.Failed = append(result.Failed, ext.ID)
			continue
		}
		result.Imported = append(result.Imported, job)
	}

	if req.HistoryID != "" && len(result.Imported) > 0 {
		if _, err := s.db.Update(ctx, historyQuery(userID, req.HistoryID), storage.Row{"imported": true}); err != nil {
			log.Warnf("[Import] failed to flag history %s: %v", req.HistoryID, err)
		}
	}
	if len(result.Imported) > 0 {
		s.invalidateStats(ctx)
	}

	log.WithField("user", userID).Infof("[Import] %d imported, %d duplicates, %d failed",
		len(result.Imported), len(result.Duplicates), len(result.Failed))
	return result, nil
}

func (s *Service) isImported(ctx context.Context, ext models.ExternalJob) (bool, error) {
	if ext.ID == "" {
		return false, nil
	}
	n, err := s.db.Count(ctx, storage.From(storage.TableImportedJobs).Eq("external_id", ext.ID).Eq("source", ext.Source))
	if err != nil {
		return false, fmt.Errorf("imported check: %w", err)
	}
	return n > 0, nil
}

func (s *Service) importOne(ctx context.Context, userID string, ext models.ExternalJob, activate bool) (models.Job, error) {
	job := ext.ToJob()
	job.ID = uuid.NewString()
	job.Type = models.NormalizeJobType(string(job.Type))
	job.Description = utils.SanitizeHTML(job.Description)
	job.Tags = cleanTags(job.Tags)
	job.IsActive = activate
	job.CreatedAt = time.Now().UTC()
	job.UpdatedAt = job.CreatedAt
	if job.Category == "" {
		job.Category = models.CategoryOther
	}

	if job.Category == models.CategoryOther && s.classifier != nil {
		category, experience, err := s.classifier.Classify(ctx, job)
		if err != nil {
			log.WithField("external", ext.ID).Warnf("[Import] classification failed: %v", err)
		} else {
			if category != "" {
				job.Category = category
			}
			if experience != "" {
				job.Experience = models.NormalizeExperience(string(experience))
			}
		}
	}

	if err := s.db.Insert(ctx, storage.TableJobs, storage.EncodeJob(job)); err != nil {
		return models.Job{}, fmt.Errorf("insert job: %w", err)
	}

	record := models.ImportedJob{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExternalID: ext.ID,
		Source:     ext.Source,
		JobID:      job.ID,
		ImportedAt: job.CreatedAt,
	}
	if err := s.db.Insert(ctx, storage.TableImportedJobs, storage.EncodeImported(record)); err != nil {
		log.WithField("job", job.ID).Warnf("[Import] failed to record import: %v", err)
	}
	return job, nil
}

// ListImported returns the user's import records, newest first
func (s *Service) ListImported(ctx context.Context, userID string) ([]models.ImportedJob, error) {
	rows, err := s.db.Select(ctx, storage.From(storage.TableImportedJobs).Eq("user_id", userID).Order("imported_at", true))
	if err != nil {
		return nil, fmt.Errorf("list imported jobs: %w", err)
	}
	out := make([]models.ImportedJob, 0, len(rows))
	for _, row := range rows {
		rec, err := storage.DecodeImported(row)
		if err != nil {
			log.Warnf("[Import] %v", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
