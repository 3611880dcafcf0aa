package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/utils"
)

const (
	maxPageBytes = 5 << 20
	maxPageRunes = 20000
)

// FetchPageTool reads the application page of a job as plain text
type FetchPageTool struct {
	svc    *jobs.Service
	client *http.Client
}

// NewFetchPageTool creates a new page fetcher tool
func NewFetchPageTool(svc *jobs.Service, client *http.Client) *FetchPageTool {
	return &FetchPageTool{svc: svc, client: client}
}

func (t *FetchPageTool) Name() string {
	return "fetch_job_page"
}

func (t *FetchPageTool) Description() string {
	return `Fetch the application page of an active job and return its text.
Input is the job slug or id; scripts and markup are stripped.`
}

func (t *FetchPageTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"job": stringProp("Slug or id of the job"),
	}, "job")
}

// FetchInput represents the input for the fetch tool
type FetchInput struct {
	Job string `json:"job"`
}

// FetchPageResponse is the page text of a job's application URL
type FetchPageResponse struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

func (t *FetchPageTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in FetchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid input: %v", err))
	}

	job, err := t.svc.GetPublicJob(ctx, in.Job)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("job %q: %v", in.Job, err))
	}
	if job.ApplicationURL == "" {
		return NewErrorResult("job has no application URL")
	}

	text, err := t.fetchPage(ctx, job.ApplicationURL)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("fetch failed: %v", err))
	}

	return NewSuccessResult(FetchPageResponse{URL: job.ApplicationURL, Text: text})
}

func (t *FetchPageTool) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	return utils.Truncate(utils.PlainText(string(body)), maxPageRunes), nil
}
