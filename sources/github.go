package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/jobboard/backend/models"
)

// GitHubJobsSource reads the legacy GitHub Jobs positions API. The public
// service is gone; the URL stays configurable for mirrors and fails soft.
type GitHubJobsSource struct {
	fetcher
	baseURL string
}

// NewGitHubJobs creates the source against baseURL
func NewGitHubJobs(baseURL string, client *http.Client) *GitHubJobsSource {
	return &GitHubJobsSource{fetcher: newFetcher(client), baseURL: baseURL}
}

func (s *GitHubJobsSource) Name() string { return GitHub }

type githubJob struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	CreatedAt   string `json:"created_at"`
	Company     string `json:"company"`
	CompanyURL  string `json:"company_url"`
	Location    string `json:"location"`
	Title       string `json:"title"`
	Description string `json:"description"`
	HowToApply  string `json:"how_to_apply"`
	CompanyLogo string `json:"company_logo"`
}

// Search fetches positions whose description matches query
func (s *GitHubJobsSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	params := url.Values{}
	params.Set("description", query)

	var resp []githubJob
	if err := s.getJSON(ctx, s.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ExternalJob, 0, len(resp))
	for _, r := range resp {
		apply := firstHref(r.HowToApply)
		if apply == "" {
			apply = r.URL
		}
		j := models.ExternalJob{
			ID:             externalID(GitHub, r.ID),
			Title:          r.Title,
			Company:        r.Company,
			Location:       r.Location,
			Type:           models.NormalizeJobType(r.Type),
			Description:    r.Description,
			ApplicationURL: apply,
			CompanyLogo:    r.CompanyLogo,
			Source:         GitHub,
			OriginalURL:    r.URL,
			CreatedAt:      parseTime(r.CreatedAt, time.UnixDate, time.RFC3339),
		}
		finish(&j)
		out = append(out, j)
	}
	return out, nil
}

// firstHref returns the first link in an HTML fragment
func firstHref(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "href" && strings.HasPrefix(string(val), "http") {
					return string(val)
				}
			}
		}
	}
}
