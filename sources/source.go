// Package sources fetches listings from external job APIs and normalises them
// into models.ExternalJob.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/models"
)

// Source names accepted in ?sources=
const (
	JSearch       = "jsearch"
	Remotive      = "remotive"
	GitHub        = "github"
	StackOverflow = "stackoverflow"
	Startup       = "startup"
	Adzuna        = "adzuna"
)

const maxBodyBytes = 8 << 20

// ErrNotConfigured is returned by a source that lacks credentials
var ErrNotConfigured = errors.New("source not configured")

// Source is one external job API
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.ExternalJob, error)
}

// fetcher is the HTTP plumbing shared by every source: a client and a
// per-source rate limiter
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newFetcher(client *http.Client) fetcher {
	return fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// get performs a rate-limited GET and returns the body of a 200 response
func (f fetcher) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

func (f fetcher) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := f.get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncateBody(body []byte) string {
	if len(body) > 200 {
		return string(body[:200]) + "..."
	}
	return string(body)
}

// NewFromConfig builds every source the configuration enables, keyed by name.
// Sources without credentials are left out.
func NewFromConfig(cfg *config.Config, client *http.Client) map[string]Source {
	out := map[string]Source{
		Remotive:      NewRemotive(cfg.RemotiveURL, client),
		GitHub:        NewGitHubJobs(cfg.GithubJobsURL, client),
		StackOverflow: NewStackOverflow(cfg.StackOverflowJobsURL, client),
		Startup:       NewStartupJobs(cfg.StartupJobsURL, client),
	}
	if cfg.RapidAPIKey != "" {
		out[JSearch] = NewJSearch(cfg.RapidAPIKey, "", client)
	}
	if cfg.AdzunaAppID != "" && cfg.AdzunaAppKey != "" {
		out[Adzuna] = NewAdzuna(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, "", client)
	}
	return out
}

// externalID namespaces a provider id by source
func externalID(source string, id any) string {
	return fmt.Sprintf("%s-%v", source, id)
}

// finish fills the heuristics every source shares
func finish(j *models.ExternalJob) {
	if j.Category == "" || j.Category == models.CategoryOther {
		j.Category = InferCategory(j.Title, j.Description, j.Tags)
	}
	if j.Experience == "" {
		j.Experience = InferExperience(j.Title, j.Description)
	}
	if !j.IsRemote {
		j.IsRemote = IsRemote(j.Title, j.Location)
	}
	if len(j.Tags) == 0 {
		j.Tags = ExtractTags(j.Title + " " + j.Description)
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Benefits == nil {
		j.Benefits = []string{}
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	if j.OriginalURL == "" {
		j.OriginalURL = j.ApplicationURL
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
}

// parseTime tries each layout and returns the zero time when none match
func parseTime(raw string, layouts ...string) time.Time {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
