package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobboard/backend/jobs"
	"github.com/jobboard/backend/social"
)

// SocialPostTool writes promotional posts for a job
type SocialPostTool struct {
	svc *jobs.Service
	gen *social.Generator
}

// NewSocialPostTool creates a new social post tool
func NewSocialPostTool(svc *jobs.Service, gen *social.Generator) *SocialPostTool {
	return &SocialPostTool{svc: svc, gen: gen}
}

func (t *SocialPostTool) Name() string {
	return "generate_social_post"
}

func (t *SocialPostTool) Description() string {
	return `Generate post text promoting an active job on LinkedIn, Twitter or Reddit.
Returns one variation per writing style; pass variation to get a single one.`
}

func (t *SocialPostTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"job":       stringProp("Slug or id of the job"),
		"platform":  stringProp("linkedin, twitter or reddit"),
		"variation": intProp("Optional variation index"),
	}, "job", "platform")
}

// SocialPostInput is the input of generate_social_post
type SocialPostInput struct {
	Job       string `json:"job"`
	Platform  string `json:"platform"`
	Variation *int   `json:"variation,omitempty"`
}

func (t *SocialPostTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in SocialPostInput
	if err := json.Unmarshal(input, &in); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid input: %v", err))
	}

	job, err := t.svc.GetPublicJob(ctx, in.Job)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("job %q: %v", in.Job, err))
	}

	variations, err := t.gen.Generate(job, social.Platform(strings.ToLower(in.Platform)))
	if err != nil {
		return NewErrorResult(err.Error())
	}

	if in.Variation != nil {
		i := social.Step(len(variations), *in.Variation, 0)
		return NewSuccessResult(variations[i])
	}
	return NewSuccessResult(variations)
}
