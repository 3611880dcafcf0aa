package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/utils"
)

// maxDescriptionRunes bounds the job text sent in a prompt
const maxDescriptionRunes = 6000

// Client wraps the Vertex AI Gemini client
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(0.1)
	model.SetTopP(0.8)
	model.SetMaxOutputTokens(256)
	model.ResponseMIMEType = "application/json"

	return &Client{
		client:    client,
		model:     model,
		modelName: cfg.GeminiModel,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// classification is the JSON the model is asked to return
type classification struct {
	Category   string `json:"category"`
	Experience string `json:"experience"`
}

// categories the model may choose from
var categories = []models.Category{
	models.CategoryFrontend, models.CategoryBackend, models.CategoryFullstack,
	models.CategoryMobile, models.CategoryDevOps, models.CategoryData,
	models.CategoryAI, models.CategoryDesign, models.CategoryProduct,
	models.CategoryMarketing, models.CategorySales, models.CategoryFinance,
	models.CategoryHR, models.CategoryOperations, models.CategoryEngineering,
	models.CategoryOther,
}

// Classify asks Gemini for a job's category and experience level
func (c *Client) Classify(ctx context.Context, job models.Job) (models.Category, models.Experience, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(classifyPrompt(job)))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := extractText(resp)
	category, experience, err := parseClassification(text)
	if err != nil {
		log.WithField("model", c.modelName).Debugf("[Gemini] unparseable classification: %s", text)
		return "", "", err
	}
	return category, experience, nil
}

func classifyPrompt(job models.Job) string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = string(cat)
	}

	description := utils.Truncate(utils.PlainText(job.Description), maxDescriptionRunes)

	return fmt.Sprintf(`Classify this job posting.

TITLE: %s
COMPANY: %s
LOCATION: %s
TAGS: %s

DESCRIPTION:
%s

Return a JSON object:
{
  "category": one of [%s],
  "experience": one of [intern, junior, junior-mid, mid, mid-senior, senior, between]
}

Return ONLY the JSON object.`, job.Title, job.Company, job.Location, strings.Join(job.Tags, ", "),
		description, strings.Join(names, ", "))
}

// parseClassification reads the model output. Unknown categories come back
// empty so the caller keeps its own value; experience is normalised.
func parseClassification(text string) (models.Category, models.Experience, error) {
	var result classification
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		return "", "", fmt.Errorf("failed to parse classification JSON: %w", err)
	}

	var category models.Category
	want := models.Category(strings.ToLower(strings.TrimSpace(result.Category)))
	for _, known := range categories {
		if want == known {
			category = known
			break
		}
	}

	var experience models.Experience
	if e := strings.ToLower(strings.TrimSpace(result.Experience)); e != "" {
		experience = models.NormalizeExperience(e)
	}
	return category, experience, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}

func cleanJSON(text string) string {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	return text
}
