package sources

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobboard/backend/models"
)

const (
	jsearchDefaultURL = "https://jsearch.p.rapidapi.com/search"
	jsearchHost       = "jsearch.p.rapidapi.com"
)

// JSearchSource queries the JSearch aggregator (LinkedIn, Indeed, Glassdoor
// and others) through RapidAPI
type JSearchSource struct {
	fetcher
	apiKey  string
	baseURL string
}

// NewJSearch creates the source. An empty baseURL uses the public endpoint.
func NewJSearch(apiKey, baseURL string, client *http.Client) *JSearchSource {
	if baseURL == "" {
		baseURL = jsearchDefaultURL
	}
	return &JSearchSource{fetcher: newFetcher(client), apiKey: apiKey, baseURL: baseURL}
}

func (s *JSearchSource) Name() string { return JSearch }

type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

type jsearchJob struct {
	JobID          string            `json:"job_id"`
	Title          string            `json:"job_title"`
	EmployerName   string            `json:"employer_name"`
	EmployerLogo   string            `json:"employer_logo"`
	City           string            `json:"job_city"`
	State          string            `json:"job_state"`
	Country        string            `json:"job_country"`
	EmploymentType string            `json:"job_employment_type"`
	Description    string            `json:"job_description"`
	IsRemote       bool              `json:"job_is_remote"`
	ApplyLink      string            `json:"job_apply_link"`
	GoogleLink     string            `json:"job_google_link"`
	PostedAt       string            `json:"job_posted_at_datetime_utc"`
	MinSalary      float64           `json:"job_min_salary"`
	MaxSalary      float64           `json:"job_max_salary"`
	SalaryCurrency string            `json:"job_salary_currency"`
	SalaryPeriod   string            `json:"job_salary_period"`
	RequiredSkills []string          `json:"job_required_skills"`
	Highlights     jsearchHighlights `json:"job_highlights"`
}

type jsearchHighlights struct {
	Qualifications []string `json:"Qualifications"`
	Benefits       []string `json:"Benefits"`
}

// Search fetches the first page of results for query
func (s *JSearchSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")

	header := http.Header{}
	header.Set("X-RapidAPI-Key", s.apiKey)
	header.Set("X-RapidAPI-Host", jsearchHost)

	var resp jsearchResponse
	if err := s.getJSON(ctx, s.baseURL+"?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ExternalJob, 0, len(resp.Data))
	for _, r := range resp.Data {
		j := models.ExternalJob{
			ID:             externalID(JSearch, r.JobID),
			Title:          r.Title,
			Company:        r.EmployerName,
			Location:       joinNonEmpty(", ", r.City, r.State, r.Country),
			Type:           models.NormalizeJobType(strings.ReplaceAll(r.EmploymentType, "TIME", " time")),
			Salary:         salary(r.MinSalary, r.MaxSalary, r.SalaryCurrency, r.SalaryPeriod),
			Description:    textToHTML(r.Description),
			Requirements:   r.Highlights.Qualifications,
			Benefits:       r.Highlights.Benefits,
			IsRemote:       r.IsRemote,
			ApplicationURL: r.ApplyLink,
			CompanyLogo:    r.EmployerLogo,
			Tags:           r.RequiredSkills,
			Source:         JSearch,
			OriginalURL:    r.GoogleLink,
			CreatedAt:      parseTime(r.PostedAt, time.RFC3339, "2006-01-02T15:04:05.000Z"),
		}
		finish(&j)
		out = append(out, j)
	}
	return out, nil
}

// salary builds a Salary from provider amounts. Periods arrive as YEAR,
// MONTH, HOUR or similar.
func salary(min, max float64, currency, period string) *models.Salary {
	if min <= 0 && max <= 0 {
		return nil
	}
	s := &models.Salary{Min: int(min), Max: int(max), Currency: strings.ToUpper(currency), Period: models.SalaryYearly}
	switch p := strings.ToLower(period); {
	case strings.HasPrefix(p, "hour"):
		s.Period = models.SalaryHourly
	case strings.HasPrefix(p, "month"):
		s.Period = models.SalaryMonthly
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// textToHTML wraps plain-text paragraphs in <p> so every description is HTML
func textToHTML(text string) string {
	if strings.Contains(text, "<") {
		return text
	}
	var sb strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}
