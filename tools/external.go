package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jobboard/backend/aggregator"
)

// maxExternalResults bounds what a single tool call returns to the agent
const maxExternalResults = 25

// SearchExternalTool queries the external job aggregators
type SearchExternalTool struct {
	agg *aggregator.Aggregator
}

// NewSearchExternalTool creates a new external search tool
func NewSearchExternalTool(agg *aggregator.Aggregator) *SearchExternalTool {
	return &SearchExternalTool{agg: agg}
}

func (t *SearchExternalTool) Name() string {
	return "search_external_jobs"
}

func (t *SearchExternalTool) Description() string {
	return fmt.Sprintf(`Search external job aggregators (%v).
Sources that fail are skipped. Returns at most %d jobs, newest first, with the full total.`,
		t.agg.Names(), maxExternalResults)
}

func (t *SearchExternalTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"query":   stringProp("Search terms"),
		"sources": arrayProp("Optional subset of sources"),
	}, "query")
}

// SearchExternalInput is the input of search_external_jobs
type SearchExternalInput struct {
	Query   string   `json:"query"`
	Sources []string `json:"sources"`
}

func (t *SearchExternalTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in SearchExternalInput
	if err := json.Unmarshal(input, &in); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid input: %v", err))
	}

	resp, err := t.agg.Search(ctx, in.Query, in.Sources)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if len(resp.Jobs) > maxExternalResults {
		resp.Jobs = resp.Jobs[:maxExternalResults]
	}
	return NewSuccessResult(resp)
}
