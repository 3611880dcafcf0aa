package sources

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jobboard/backend/models"
)

const remotiveLimit = 50

// RemotiveSource queries the Remotive remote-jobs board
type RemotiveSource struct {
	fetcher
	baseURL string
}

// NewRemotive creates the source against baseURL
func NewRemotive(baseURL string, client *http.Client) *RemotiveSource {
	return &RemotiveSource{fetcher: newFetcher(client), baseURL: baseURL}
}

func (s *RemotiveSource) Name() string { return Remotive }

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID                        int      `json:"id"`
	URL                       string   `json:"url"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	CompanyLogo               string   `json:"company_logo"`
	Category                  string   `json:"category"`
	Tags                      []string `json:"tags"`
	JobType                   string   `json:"job_type"`
	PublicationDate           string   `json:"publication_date"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
}

// Search fetches remote jobs matching query
func (s *RemotiveSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(remotiveLimit))

	var resp remotiveResponse
	if err := s.getJSON(ctx, s.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ExternalJob, 0, len(resp.Jobs))
	for _, r := range resp.Jobs {
		location := r.CandidateRequiredLocation
		if location == "" {
			location = "Remote"
		}
		j := models.ExternalJob{
			ID:             externalID(Remotive, r.ID),
			Title:          r.Title,
			Company:        r.CompanyName,
			Location:       location,
			Type:           models.NormalizeJobType(strings.ReplaceAll(r.JobType, "_", "-")),
			Category:       remotiveCategory(r.Category),
			Salary:         parseSalaryText(r.Salary),
			Description:    r.Description,
			IsRemote:       true,
			ApplicationURL: r.URL,
			CompanyLogo:    r.CompanyLogo,
			Tags:           r.Tags,
			Source:         Remotive,
			OriginalURL:    r.URL,
			CreatedAt:      parseTime(r.PublicationDate, "2006-01-02T15:04:05", time.RFC3339),
		}
		finish(&j)
		out = append(out, j)
	}
	return out, nil
}

// remotiveCategory maps the board's category names onto ours
func remotiveCategory(raw string) models.Category {
	switch strings.ToLower(raw) {
	case "software development":
		return "" // too broad, left to keyword inference
	case "devops / sysadmin":
		return models.CategoryDevOps
	case "data", "data analysis":
		return models.CategoryData
	case "design":
		return models.CategoryDesign
	case "product":
		return models.CategoryProduct
	case "marketing":
		return models.CategoryMarketing
	case "sales", "sales / business":
		return models.CategorySales
	case "finance / legal", "finance":
		return models.CategoryFinance
	case "human resources", "hr":
		return models.CategoryHR
	}
	return ""
}

var salaryNumberRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(k)?`)

// parseSalaryText reads free-form ranges such as "$80k - $100k" or
// "60,000 - 75,000 EUR"
func parseSalaryText(raw string) *models.Salary {
	lower := strings.ToLower(raw)
	matches := salaryNumberRe.FindAllStringSubmatch(lower, 2)
	if len(matches) == 0 {
		return nil
	}

	var amounts []int
	for _, m := range matches {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if m[2] == "k" {
			n *= 1000
		}
		amounts = append(amounts, int(n))
	}
	if len(amounts) == 0 || amounts[0] == 0 {
		return nil
	}

	s := &models.Salary{Min: amounts[0], Max: amounts[0], Period: models.SalaryYearly}
	if len(amounts) > 1 {
		s.Max = amounts[1]
	}
	switch {
	case strings.Contains(lower, "€") || strings.Contains(lower, "eur"):
		s.Currency = "EUR"
	case strings.Contains(lower, "£") || strings.Contains(lower, "gbp"):
		s.Currency = "GBP"
	case strings.Contains(lower, "$") || strings.Contains(lower, "usd"):
		s.Currency = "USD"
	}
	switch {
	case strings.Contains(lower, "hour"):
		s.Period = models.SalaryHourly
	case strings.Contains(lower, "month"):
		s.Period = models.SalaryMonthly
	}
	return s
}
