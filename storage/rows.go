package storage

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jobboard/backend/models"
)

// jobRow is the snake_case shape of a jobs record
type jobRow struct {
	ID             string    `mapstructure:"id"`
	Title          string    `mapstructure:"title"`
	Company        string    `mapstructure:"company"`
	Location       string    `mapstructure:"location"`
	Type           string    `mapstructure:"type"`
	Category       string    `mapstructure:"category"`
	Experience     string    `mapstructure:"experience"`
	SalaryMin      *int      `mapstructure:"salary_min"`
	SalaryMax      *int      `mapstructure:"salary_max"`
	SalaryCurrency *string   `mapstructure:"salary_currency"`
	SalaryPeriod   *string   `mapstructure:"salary_period"`
	Description    string    `mapstructure:"description"`
	Requirements   []string  `mapstructure:"requirements"`
	Benefits       []string  `mapstructure:"benefits"`
	IsRemote       bool      `mapstructure:"is_remote"`
	IsFeatured     bool      `mapstructure:"is_featured"`
	IsActive       bool      `mapstructure:"is_active"`
	ApplicationURL string    `mapstructure:"application_url"`
	CompanyLogo    *string   `mapstructure:"company_logo"`
	Tags           []string  `mapstructure:"tags"`
	Slug           string    `mapstructure:"slug"`
	CreatedAt      time.Time `mapstructure:"created_at"`
	UpdatedAt      time.Time `mapstructure:"updated_at"`
}

type clickRow struct {
	ID             string    `mapstructure:"id"`
	JobID          string    `mapstructure:"job_id"`
	ApplicationURL string    `mapstructure:"application_url"`
	ClickedAt      time.Time `mapstructure:"clicked_at"`
	UserAgent      *string   `mapstructure:"user_agent"`
	Referrer       *string   `mapstructure:"referrer"`
	IsValid        *bool     `mapstructure:"is_valid"`
	ErrorMessage   *string   `mapstructure:"error_message"`
}

type historyRow struct {
	ID          string    `mapstructure:"id"`
	UserID      string    `mapstructure:"user_id"`
	Query       string    `mapstructure:"query"`
	Sources     []string  `mapstructure:"sources"`
	ResultCount int       `mapstructure:"result_count"`
	Results     *string   `mapstructure:"results"`
	Imported    bool      `mapstructure:"imported"`
	CreatedAt   time.Time `mapstructure:"created_at"`
}

type importedRow struct {
	ID         string    `mapstructure:"id"`
	UserID     string    `mapstructure:"user_id"`
	ExternalID string    `mapstructure:"external_id"`
	Source     string    `mapstructure:"source"`
	JobID      string    `mapstructure:"job_id"`
	ImportedAt time.Time `mapstructure:"imported_at"`
}

func decodeRow(row Row, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			sqliteTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(row))
}

// sqliteTimeHook parses the text layout go-sqlite3 uses for TIMESTAMP columns
// when the driver hands back a string.
func sqliteTimeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := data.(string)
	for _, layout := range []string{"2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return data, nil
}

// DecodeJob maps a jobs row to the read model. Experience is normalised
// here so no caller ever sees a legacy value.
func DecodeJob(row Row) (models.Job, error) {
	var r jobRow
	if err := decodeRow(row, &r); err != nil {
		return models.Job{}, fmt.Errorf("decode job: %w", err)
	}

	job := models.Job{
		ID:             r.ID,
		Title:          r.Title,
		Company:        r.Company,
		Location:       r.Location,
		Type:           models.JobType(r.Type),
		Category:       models.Category(r.Category),
		Experience:     models.NormalizeExperience(r.Experience),
		Description:    r.Description,
		Requirements:   nonNilStrings(r.Requirements),
		Benefits:       nonNilStrings(r.Benefits),
		IsRemote:       r.IsRemote,
		IsFeatured:     r.IsFeatured,
		IsActive:       r.IsActive,
		ApplicationURL: r.ApplicationURL,
		CompanyLogo:    deref(r.CompanyLogo),
		Tags:           nonNilStrings(r.Tags),
		Slug:           r.Slug,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}

	if r.SalaryMin != nil || r.SalaryMax != nil {
		job.Salary = &models.Salary{
			Currency: deref(r.SalaryCurrency),
			Period:   models.SalaryPeriod(deref(r.SalaryPeriod)),
		}
		if r.SalaryMin != nil {
			job.Salary.Min = *r.SalaryMin
		}
		if r.SalaryMax != nil {
			job.Salary.Max = *r.SalaryMax
		}
	}
	return job, nil
}

// DecodeJobs maps rows, skipping (and reporting) rows that fail to decode
func DecodeJobs(rows []Row) ([]models.Job, error) {
	jobs := make([]models.Job, 0, len(rows))
	var firstErr error
	for _, row := range rows {
		job, err := DecodeJob(row)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, firstErr
}

// EncodeJob maps a job to its backend row
func EncodeJob(job models.Job) Row {
	row := Row{
		"id":              job.ID,
		"title":           job.Title,
		"company":         job.Company,
		"location":        job.Location,
		"type":            string(job.Type),
		"category":        string(job.Category),
		"experience":      string(job.Experience),
		"salary_min":      nil,
		"salary_max":      nil,
		"salary_currency": nil,
		"salary_period":   nil,
		"description":     job.Description,
		"requirements":    nonNilStrings(job.Requirements),
		"benefits":        nonNilStrings(job.Benefits),
		"is_remote":       job.IsRemote,
		"is_featured":     job.IsFeatured,
		"is_active":       job.IsActive,
		"application_url": job.ApplicationURL,
		"company_logo":    nullable(job.CompanyLogo),
		"tags":            nonNilStrings(job.Tags),
		"slug":            job.Slug,
		"created_at":      job.CreatedAt,
		"updated_at":      job.UpdatedAt,
	}
	if job.Salary != nil {
		row["salary_min"] = job.Salary.Min
		row["salary_max"] = job.Salary.Max
		row["salary_currency"] = nullable(job.Salary.Currency)
		row["salary_period"] = nullable(string(job.Salary.Period))
	}
	return row
}

// DecodeClick maps a job_clicks row
func DecodeClick(row Row) (models.JobClick, error) {
	var r clickRow
	if err := decodeRow(row, &r); err != nil {
		return models.JobClick{}, fmt.Errorf("decode click: %w", err)
	}
	return models.JobClick{
		ID:             r.ID,
		JobID:          r.JobID,
		ApplicationURL: r.ApplicationURL,
		ClickedAt:      r.ClickedAt,
		UserAgent:      deref(r.UserAgent),
		Referrer:       deref(r.Referrer),
		IsValid:        r.IsValid,
		ErrorMessage:   deref(r.ErrorMessage),
	}, nil
}

// EncodeClick maps a click to its backend row
func EncodeClick(c models.JobClick) Row {
	row := Row{
		"id":              c.ID,
		"job_id":          c.JobID,
		"application_url": c.ApplicationURL,
		"clicked_at":      c.ClickedAt,
		"user_agent":      nullable(c.UserAgent),
		"referrer":        nullable(c.Referrer),
		"is_valid":        nil,
		"error_message":   nullable(c.ErrorMessage),
	}
	if c.IsValid != nil {
		row["is_valid"] = *c.IsValid
	}
	return row
}

// DecodeHistory maps a search_history row
func DecodeHistory(row Row) (models.SearchHistory, error) {
	var r historyRow
	if err := decodeRow(row, &r); err != nil {
		return models.SearchHistory{}, fmt.Errorf("decode search history: %w", err)
	}
	h := models.SearchHistory{
		ID:          r.ID,
		UserID:      r.UserID,
		Query:       r.Query,
		Sources:     nonNilStrings(r.Sources),
		ResultCount: r.ResultCount,
		Imported:    r.Imported,
		CreatedAt:   r.CreatedAt,
	}
	if r.Results != nil && *r.Results != "" {
		if err := json.Unmarshal([]byte(*r.Results), &h.Results); err != nil {
			return h, fmt.Errorf("decode search history results: %w", err)
		}
	}
	return h, nil
}

// EncodeHistory maps a search history entry to its backend row
func EncodeHistory(h models.SearchHistory) (Row, error) {
	results, err := json.Marshal(h.Results)
	if err != nil {
		return nil, fmt.Errorf("encode search history results: %w", err)
	}
	return Row{
		"id":           h.ID,
		"user_id":      h.UserID,
		"query":        h.Query,
		"sources":      nonNilStrings(h.Sources),
		"result_count": h.ResultCount,
		"results":      string(results),
		"imported":     h.Imported,
		"created_at":   h.CreatedAt,
	}, nil
}

// DecodeImported maps an imported_jobs row
func DecodeImported(row Row) (models.ImportedJob, error) {
	var r importedRow
	if err := decodeRow(row, &r); err != nil {
		return models.ImportedJob{}, fmt.Errorf("decode imported job: %w", err)
	}
	return models.ImportedJob(r), nil
}

// EncodeImported maps an import record to its backend row
func EncodeImported(i models.ImportedJob) Row {
	return Row{
		"id":          i.ID,
		"user_id":     i.UserID,
		"external_id": i.ExternalID,
		"source":      i.Source,
		"job_id":      i.JobID,
		"imported_at": i.ImportedAt,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
