package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/verdant/sprout/pkg/entity"
)

// GenAIAdvisor generates care advice using Google's Gemini API.
type GenAIAdvisor struct {
	client *genai.Client
	model  string
}

// NewGenAIAdvisor creates a Gemini-backed advisor.
func NewGenAIAdvisor(ctx context.Context, apiKey, model string) (*GenAIAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIAdvisor{
		client: client,
		model:  model,
	}, nil
}

func (a *GenAIAdvisor) CareAdvice(ctx context.Context, plant *entity.Plant, recent []*entity.CareLog) (*entity.CareAdvice, error) {
	prompt := buildPrompt(plant, recent)

	result, err := a.client.Models.GenerateContent(ctx,
		a.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var out entity.CareAdvice
	if err := sonic.UnmarshalString(text, &out); err != nil {
		return nil, fmt.Errorf("model returned malformed advice: %w", err)
	}
	out.Source = "gemini"
	out.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	return &out, nil
}
