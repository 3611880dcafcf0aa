package sources

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jobboard/backend/models"
)

// StartupJobsSource queries a startup-jobs API
type StartupJobsSource struct {
	fetcher
	baseURL string
}

// NewStartupJobs creates the source against baseURL
func NewStartupJobs(baseURL string, client *http.Client) *StartupJobsSource {
	return &StartupJobsSource{fetcher: newFetcher(client), baseURL: baseURL}
}

func (s *StartupJobsSource) Name() string { return Startup }

type startupResponse struct {
	Jobs []startupJob `json:"jobs"`
}

type startupJob struct {
	ID          any            `json:"id"`
	Title       string         `json:"title"`
	Company     startupCompany `json:"company"`
	Location    string         `json:"location"`
	Remote      bool           `json:"remote"`
	URL         string         `json:"url"`
	ApplyURL    string         `json:"apply_url"`
	Type        string         `json:"type"`
	Tags        []string       `json:"tags"`
	Description string         `json:"description"`
	PublishedAt string         `json:"published_at"`
}

type startupCompany struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Search fetches startup jobs matching query
func (s *StartupJobsSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	params := url.Values{}
	params.Set("q", query)

	var resp startupResponse
	if err := s.getJSON(ctx, s.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ExternalJob, 0, len(resp.Jobs))
	for _, r := range resp.Jobs {
		apply := r.ApplyURL
		if apply == "" {
			apply = r.URL
		}
		j := models.ExternalJob{
			ID:             externalID(Startup, r.ID),
			Title:          r.Title,
			Company:        r.Company.Name,
			Location:       r.Location,
			Type:           models.NormalizeJobType(r.Type),
			Description:    textToHTML(r.Description),
			IsRemote:       r.Remote,
			ApplicationURL: apply,
			CompanyLogo:    r.Company.Logo,
			Tags:           r.Tags,
			Source:         Startup,
			OriginalURL:    r.URL,
			CreatedAt:      parseTime(r.PublishedAt, time.RFC3339, "2006-01-02"),
		}
		finish(&j)
		out = append(out, j)
	}
	return out, nil
}
