package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jobboard/backend/models"
)

const (
	adzunaDefaultURL = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize   = 50
	adzunaMaxPages   = 2
)

// AdzunaSource queries the Adzuna public API
type AdzunaSource struct {
	fetcher
	appID   string
	appKey  string
	country string
	baseURL string
}

// NewAdzuna creates the source. country is an Adzuna country code such as
// "gb" or "us"; an empty baseURL uses the public endpoint.
func NewAdzuna(appID, appKey, country, baseURL string, client *http.Client) *AdzunaSource {
	if baseURL == "" {
		baseURL = adzunaDefaultURL
	}
	if country == "" {
		country = "gb"
	}
	return &AdzunaSource{fetcher: newFetcher(client), appID: appID, appKey: appKey, country: country, baseURL: baseURL}
}

func (s *AdzunaSource) Name() string { return Adzuna }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaName     `json:"company"`
	Location     adzunaName     `json:"location"`
	Category     adzunaCategory `json:"category"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Tag string `json:"tag"`
}

var adzunaCurrency = map[string]string{
	"gb": "GBP", "us": "USD", "de": "EUR", "fr": "EUR", "nl": "EUR", "at": "EUR",
	"es": "EUR", "it": "EUR", "ca": "CAD", "au": "AUD", "in": "INR", "sg": "SGD",
}

// Search pages through results until a short page or adzunaMaxPages
func (s *AdzunaSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	if s.appID == "" || s.appKey == "" {
		return nil, ErrNotConfigured
	}

	var out []models.ExternalJob
	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := s.fetchPage(ctx, query, page)
		if err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		out = append(out, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}
	return out, nil
}

func (s *AdzunaSource) fetchPage(ctx context.Context, query string, page int) ([]models.ExternalJob, error) {
	params := url.Values{}
	params.Set("app_id", s.appID)
	params.Set("app_key", s.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query)
	params.Set("sort_by", "date")
	params.Set("content-type", "application/json")

	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", s.baseURL, s.country, page, params.Encode())

	var resp adzunaResponse
	if err := s.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ExternalJob, 0, len(resp.Results))
	for _, r := range resp.Results {
		j := models.ExternalJob{
			ID:             externalID(Adzuna, r.ID),
			Title:          stripTags(r.Title),
			Company:        r.Company.DisplayName,
			Location:       r.Location.DisplayName,
			Type:           adzunaType(r.ContractTime, r.ContractType),
			Category:       mapAdzunaCategory(r.Category.Tag),
			Salary:         salary(r.SalaryMin, r.SalaryMax, adzunaCurrency[s.country], "year"),
			Description:    textToHTML(stripTags(r.Description)),
			ApplicationURL: r.RedirectURL,
			Source:         Adzuna,
			OriginalURL:    r.RedirectURL,
			CreatedAt:      parseTime(r.Created, time.RFC3339),
		}
		finish(&j)
		out = append(out, j)
	}
	return out, nil
}

func adzunaType(contractTime, contractType string) models.JobType {
	if contractType == "contract" {
		return models.JobTypeContract
	}
	return models.NormalizeJobType(strings.ReplaceAll(contractTime, "_", "-"))
}

func mapAdzunaCategory(tag string) models.Category {
	switch tag {
	case "it-jobs":
		return "" // left to keyword inference
	case "creative-design-jobs":
		return models.CategoryDesign
	case "pr-advertising-marketing-jobs":
		return models.CategoryMarketing
	case "sales-jobs":
		return models.CategorySales
	case "accounting-finance-jobs":
		return models.CategoryFinance
	case "hr-jobs":
		return models.CategoryHR
	}
	return ""
}

// Adzuna highlights matches with <strong> in titles and snippets
var tagRe = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}
