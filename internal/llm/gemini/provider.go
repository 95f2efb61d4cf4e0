package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/chrisrosenlind/atv-bot/internal/llm"
)

// Provider implements llm.Provider for Gemini
type Provider struct {
	apiKey       string
	defaultModel string
}

// NewProvider creates a new Gemini provider
func NewProvider(apiKey, defaultModel string) llm.Provider {
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}
	return &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gemini"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// GenerateDecision runs one completion constrained to the decision schema.
// Gemini response schemas cannot close objects the way strict mode does;
// the planner's decode path tolerates the difference.
func (p *Provider) GenerateDecision(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	var temperature float32 = 0.0
	generativeModel.Temperature = &temperature
	generativeModel.ResponseMIMEType = "application/json"
	generativeModel.ResponseSchema = decisionSchema()
	generativeModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.Instructions)},
	}

	start := time.Now()
	resp, err := generativeModel.GenerateContent(ctx, genai.Text(req.Input))
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Text:       output,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

// decisionSchema mirrors llm.DecisionSchema in genai's schema dialect.
func decisionSchema() *genai.Schema {
	return &genai.Schema{
		Type:     genai.TypeObject,
		Required: []string{"action", "reply", "question", "draft", "sessionPatch"},
		Properties: map[string]*genai.Schema{
			"action": {
				Type: genai.TypeString,
				Enum: []string{"chat", "ask", "propose_event"},
			},
			"reply":    {Type: genai.TypeString, Nullable: true},
			"question": {Type: genai.TypeString, Nullable: true},
			"draft": {
				Type:     genai.TypeObject,
				Nullable: true,
				Required: []string{
					"name", "description", "scheduledStartTime",
					"scheduledEndTime", "entityType", "location", "channelId",
				},
				Properties: map[string]*genai.Schema{
					"name":               {Type: genai.TypeString},
					"description":        {Type: genai.TypeString, Nullable: true},
					"scheduledStartTime": {Type: genai.TypeString},
					"scheduledEndTime":   {Type: genai.TypeString, Nullable: true},
					"entityType": {
						Type: genai.TypeString,
						Enum: []string{"EXTERNAL", "VOICE", "STAGE"},
					},
					"location":  {Type: genai.TypeString, Nullable: true},
					"channelId": {Type: genai.TypeString, Nullable: true},
				},
			},
			"sessionPatch": {
				Type:     genai.TypeObject,
				Required: []string{"mode", "awaiting"},
				Properties: map[string]*genai.Schema{
					"mode": {
						Type:     genai.TypeString,
						Nullable: true,
						Enum:     []string{"chat", "event"},
					},
					"awaiting": {
						Type:     genai.TypeString,
						Nullable: true,
						Enum:     []string{"name", "where", "duration", "description", "confirm", "null"},
					},
				},
			},
		},
	}
}
