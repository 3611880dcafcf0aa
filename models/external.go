package models

import "time"

// ExternalJob is a listing normalised from an external aggregator
// @Description Job fetched from an external source
type ExternalJob struct {
	ID             string     `json:"id" example:"remotive-1834"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	Type           JobType    `json:"type"`
	Category       Category   `json:"category"`
	Experience     Experience `json:"experience"`
	Salary         *Salary    `json:"salary,omitempty"`
	Description    string     `json:"description"` // HTML
	Requirements   []string   `json:"requirements"`
	Benefits       []string   `json:"benefits"`
	IsRemote       bool       `json:"isRemote"`
	ApplicationURL string     `json:"applicationUrl"`
	CompanyLogo    string     `json:"companyLogo,omitempty"`
	Tags           []string   `json:"tags"`
	Source         string     `json:"source" example:"remotive"`
	OriginalURL    string     `json:"originalUrl"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ToJob converts an external listing into an inactive-by-default draft job.
// The caller decides whether it is published.
func (e ExternalJob) ToJob() Job {
	return Job{
		Title:          e.Title,
		Company:        e.Company,
		Location:       e.Location,
		Type:           e.Type,
		Category:       e.Category,
		Experience:     NormalizeExperience(string(e.Experience)),
		Salary:         e.Salary,
		Description:    e.Description,
		Requirements:   nonNil(e.Requirements),
		Benefits:       nonNil(e.Benefits),
		IsRemote:       e.IsRemote,
		ApplicationURL: e.ApplicationURL,
		CompanyLogo:    e.CompanyLogo,
		Tags:           nonNil(e.Tags),
		Slug:           GenerateSlug(e.Title, e.Company),
	}
}

// ExternalJobsResponse is the body of GET /api/external-jobs
// @Description External jobs fan-out result
type ExternalJobsResponse struct {
	Jobs    []ExternalJob `json:"jobs"`
	Total   int           `json:"total" example:"42"`
	Sources []string      `json:"sources" example:"jsearch,remotive"`
}

// SearchHistory is an admin's past external search
// @Description Saved external search
type SearchHistory struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Query       string        `json:"query"`
	Sources     []string      `json:"sources"`
	ResultCount int           `json:"resultCount"`
	Results     []ExternalJob `json:"results,omitempty"`
	Imported    bool          `json:"imported"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// ImportedJob records that an external listing became a local job
type ImportedJob struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ExternalID string    `json:"externalId"`
	Source     string    `json:"source"`
	JobID      string    `json:"jobId"`
	ImportedAt time.Time `json:"importedAt"`
}

// JobClick is one "Apply" click
type JobClick struct {
	ID             string    `json:"id"`
	JobID          string    `json:"jobId"`
	ApplicationURL string    `json:"applicationUrl"`
	ClickedAt      time.Time `json:"clickedAt"`
	UserAgent      string    `json:"userAgent"`
	Referrer       string    `json:"referrer"`
	IsValid        *bool     `json:"isValid"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
