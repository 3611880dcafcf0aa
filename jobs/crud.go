package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/storage"
	"github.com/jobboard/backend/utils"
)

// ValidateInput checks the admin job form
func ValidateInput(in models.JobInput) error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.ApplicationURL) == "" {
		missing = append(missing, "applicationUrl")
	}
	if strings.TrimSpace(string(in.Category)) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Msg: "missing required fields"}
	}

	var invalid []string
	if !models.IsValidJobType(in.Type) {
		invalid = append(invalid, "type")
	}
	if !models.IsCanonicalExperience(string(in.Experience)) {
		invalid = append(invalid, "experience")
	}
	if u, err := url.Parse(in.ApplicationURL); err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "mailto") {
		invalid = append(invalid, "applicationUrl")
	}
	if in.Salary != nil {
		if in.Salary.Min < 0 || in.Salary.Max < 0 || (in.Salary.Max > 0 && in.Salary.Min > in.Salary.Max) {
			invalid = append(invalid, "salary")
		} else if in.Salary.Period != "" && !models.IsValidSalaryPeriod(in.Salary.Period) {
			invalid = append(invalid, "salary.period")
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid, Msg: "invalid fields"}
	}
	return nil
}

// CreateJob validates, checks for duplicates and inserts a job
func (s *Service) CreateJob(ctx context.Context, in models.JobInput) (models.Job, error) {
	if err := ValidateInput(in); err != nil {
		return models.Job{}, err
	}

	exists, err := s.CheckJobExists(ctx, in.Title, in.Company, in.ApplicationURL)
	if err != nil {
		return models.Job{}, err
	}
	if exists {
		return models.Job{}, ErrDuplicate
	}

	job := jobFromInput(in)
	job.ID = uuid.NewString()
	job.IsActive = in.IsActive == nil || *in.IsActive
	job.CreatedAt = time.Now().UTC()
	job.UpdatedAt = job.CreatedAt

	if err := s.db.Insert(ctx, storage.TableJobs, storage.EncodeJob(job)); err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}
	s.invalidateStats(ctx)

	log.WithField("job", job.ID).Infof("[Jobs] created %q at %q", job.Title, job.Company)
	return job, nil
}

func jobFromInput(in models.JobInput) models.Job {
	job := models.Job{
		Title:          strings.TrimSpace(in.Title),
		Company:        strings.TrimSpace(in.Company),
		Location:       strings.TrimSpace(in.Location),
		Type:           in.Type,
		Category:       models.Category(strings.ToLower(strings.TrimSpace(string(in.Category)))),
		Experience:     in.Experience,
		Salary:         in.Salary,
		Description:    utils.SanitizeHTML(in.Description),
		Requirements:   cleanList(in.Requirements),
		Benefits:       cleanList(in.Benefits),
		IsRemote:       in.IsRemote,
		IsFeatured:     in.IsFeatured,
		ApplicationURL: strings.TrimSpace(in.ApplicationURL),
		CompanyLogo:    strings.TrimSpace(in.CompanyLogo),
		Tags:           cleanTags(in.Tags),
	}
	job.Slug = models.GenerateSlug(job.Title, job.Company)
	return job
}

// GetJob loads any job by id, active or not
func (s *Service) GetJob(ctx context.Context, id string) (models.Job, error) {
	return s.findOne(ctx, storage.From(storage.TableJobs).Eq("id", id))
}

// GetPublicJob loads an active job by slug, falling back to id
func (s *Service) GetPublicJob(ctx context.Context, slugOrID string) (models.Job, error) {
	job, err := s.findOne(ctx, activeJobs().Eq("slug", slugOrID).Order("created_at", true))
	if errors.Is(err, ErrNotFound) {
		return s.findOne(ctx, activeJobs().Eq("id", slugOrID))
	}
	return job, err
}

func (s *Service) findOne(ctx context.Context, q *storage.Query) (models.Job, error) {
	rows, err := s.db.Select(ctx, q.Take(1))
	if err != nil {
		return models.Job{}, fmt.Errorf("load job: %w", err)
	}
	if len(rows) == 0 {
		return models.Job{}, ErrNotFound
	}
	return storage.DecodeJob(rows[0])
}

// UpdateJob replaces every editable field of a job. The slug is regenerated
// when title or company changed.
func (s *Service) UpdateJob(ctx context.Context, id string, in models.JobInput) (models.Job, error) {
	if err := ValidateInput(in); err != nil {
		return models.Job{}, err
	}

	current, err := s.GetJob(ctx, id)
	if err != nil {
		return models.Job{}, err
	}

	job := jobFromInput(in)
	job.ID = current.ID
	job.CreatedAt = current.CreatedAt
	job.UpdatedAt = time.Now().UTC()
	job.IsActive = current.IsActive
	if in.IsActive != nil {
		job.IsActive = *in.IsActive
	}
	if job.Title == current.Title && job.Company == current.Company {
		job.Slug = current.Slug
	}

	row := storage.EncodeJob(job)
	delete(row, "id")
	delete(row, "created_at")
	if _, err := s.db.Update(ctx, storage.From(storage.TableJobs).Eq("id", id), row); err != nil {
		return models.Job{}, fmt.Errorf("update job: %w", err)
	}
	s.invalidateStats(ctx)
	return job, nil
}

// ToggleActive flips isActive
func (s *Service) ToggleActive(ctx context.Context, id string) (models.Job, error) {
	return s.toggle(ctx, id, "is_active", func(j *models.Job) *bool { return &j.IsActive })
}

// ToggleRemote flips isRemote
func (s *Service) ToggleRemote(ctx context.Context, id string) (models.Job, error) {
	return s.toggle(ctx, id, "is_remote", func(j *models.Job) *bool { return &j.IsRemote })
}

// ToggleFeatured flips isFeatured
func (s *Service) ToggleFeatured(ctx context.Context, id string) (models.Job, error) {
	return s.toggle(ctx, id, "is_featured", func(j *models.Job) *bool { return &j.IsFeatured })
}

func (s *Service) toggle(ctx context.Context, id, column string, field func(*models.Job) *bool) (models.Job, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return models.Job{}, err
	}

	flag := field(&job)
	*flag = !*flag
	job.UpdatedAt = time.Now().UTC()

	set := storage.Row{column: *flag, "updated_at": job.UpdatedAt}
	if _, err := s.db.Update(ctx, storage.From(storage.TableJobs).Eq("id", id), set); err != nil {
		return models.Job{}, fmt.Errorf("toggle %s: %w", column, err)
	}
	s.invalidateStats(ctx)
	return job, nil
}

// DeleteJob removes the row. There is no soft delete; deactivate with
// ToggleActive to hide a job while keeping it.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	n, err := s.db.Delete(ctx, storage.From(storage.TableJobs).Eq("id", id))
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.invalidateStats(ctx)
	log.WithField("job", id).Info("[Jobs] deleted")
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// cleanTags trims tags and drops case-insensitive repeats, keeping first order
func cleanTags(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
