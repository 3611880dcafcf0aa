package models

// JobInput is the admin create/edit form
// @Description Admin job form
type JobInput struct {
	Title          string     `json:"title" example:"Senior Go Engineer"`
	Company        string     `json:"company" example:"Acme"`
	Location       string     `json:"location" example:"Berlin, Germany"`
	Type           JobType    `json:"type" example:"full-time"`
	Category       Category   `json:"category" example:"backend"`
	Experience     Experience `json:"experience" example:"senior"`
	Salary         *Salary    `json:"salary,omitempty"`
	Description    string     `json:"description"`
	Requirements   []string   `json:"requirements"`
	Benefits       []string   `json:"benefits"`
	IsRemote       bool       `json:"isRemote"`
	IsFeatured     bool       `json:"isFeatured"`
	IsActive       *bool      `json:"isActive,omitempty"`
	ApplicationURL string     `json:"applicationUrl" example:"https://acme.example/careers/42"`
	CompanyLogo    string     `json:"companyLogo,omitempty"`
	Tags           []string   `json:"tags"`
}

// DuplicateCheckRequest asks whether a candidate job already exists
// @Description Duplicate check request
type DuplicateCheckRequest struct {
	Title          string `json:"title" binding:"required"`
	Company        string `json:"company" binding:"required"`
	ApplicationURL string `json:"applicationUrl"`
}

// DuplicateCheckResponse is the answer to a DuplicateCheckRequest
type DuplicateCheckResponse struct {
	Exists bool   `json:"exists"`
	Slug   string `json:"slug"`
}

// ExternalSearchRequest runs an admin external search and records it
// @Description Admin external search request
type ExternalSearchRequest struct {
	Query   string   `json:"query" binding:"required" example:"golang"`
	Sources []string `json:"sources,omitempty" example:"remotive,jsearch"`
}

// ImportRequest imports external jobs as local listings
// @Description Import request
type ImportRequest struct {
	Jobs      []ExternalJob `json:"jobs" binding:"required"`
	HistoryID string        `json:"historyId,omitempty"`
	Activate  bool          `json:"activate"`
}

// ImportResult reports what happened to each external job of an ImportRequest
type ImportResult struct {
	Imported   []Job    `json:"imported"`
	Duplicates []string `json:"duplicates"`
	Failed     []string `json:"failed"`
}

// ClickRequest is sent when a visitor presses "Apply"
type ClickRequest struct {
	Referrer string `json:"referrer,omitempty"`
}

// ClickStats summarises job_clicks for the dashboard
// @Description Click analytics
type ClickStats struct {
	TotalClicks  int             `json:"totalClicks"`
	InvalidLinks int             `json:"invalidLinks"`
	PendingLinks int             `json:"pendingLinks"`
	ByJob        []JobClickCount `json:"byJob"`
	Recent       []JobClick      `json:"recent"`
}

// JobClickCount is the number of clicks a job received
type JobClickCount struct {
	JobID  string `json:"jobId"`
	Clicks int    `json:"clicks"`
}

// SiteStats is shown on the landing page
// @Description Public landing-page statistics
type SiteStats struct {
	TotalJobs  int `json:"totalJobs" example:"120"`
	Companies  int `json:"companies" example:"48"`
	RemoteJobs int `json:"remoteJobs" example:"63"`
}

// RelatedJobsResponse wraps the related-jobs list
type RelatedJobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// ErrorResponse represents an API error response
// @Description Standard error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request body"`
	Code    int    `json:"code" example:"400"`
	Details string `json:"details,omitempty" example:"title is required"`
}

// HealthResponse represents health check response
// @Description Server health status
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Version   string `json:"version" example:"1.0.0"`
	Timestamp string `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// AnalyticsRequest selects one of the canned GA4 reports
// @Description Analytics report request
type AnalyticsRequest struct {
	Report    string `json:"report" binding:"required" example:"overview"`
	StartDate string `json:"startDate,omitempty" example:"30daysAgo"`
	EndDate   string `json:"endDate,omitempty" example:"today"`
}
