package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

// contentGenerator — часть *genai.Models, которой пользуется провайдер.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini реализует domain.Generator через Gemini API.
type Gemini struct {
	models      contentGenerator
	model       string
	timeout     time.Duration
	temperature float64
}

var _ domain.Generator = (*Gemini)(nil)

// NewGeminiClient создаёт клиента Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: GOOGLE_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// NewGemini создаёт провайдера поверх client.Models.
func NewGemini(models contentGenerator, model string, timeout time.Duration, temperature float64) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gemini{models: models, model: model, timeout: timeout, temperature: temperatureOr(temperature, defaultTemperature)}
}

// Generate выполняет один вызов модели без повторов.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperatureOr(opts.Temperature, g.temperature))),
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	metrics.ObserveNetworkRequest("gemini", "generate_content", g.model, start, err)
	if err == nil && resp != nil && resp.UsageMetadata != nil {
		u := resp.UsageMetadata
		metrics.ObserveLLMGeneration(g.model, time.Since(start), int(u.PromptTokenCount), int(u.CandidatesTokenCount), int(u.TotalTokenCount))
	}
	return checkReply("gemini", responseText(resp), err, opts)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
