package llm

import (
	"context"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
	openai "github.com/HysterChat/pinco-clone/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI реализует domain.Generator через Chat Completions.
type OpenAI struct {
	client      chatClient
	model       string
	timeout     time.Duration
	temperature float64
}

var _ domain.Generator = (*OpenAI)(nil)

// NewOpenAI создаёт провайдера.
func NewOpenAI(client chatClient, model string, timeout time.Duration, temperature float64) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAI{client: client, model: model, timeout: timeout, temperature: temperatureOr(temperature, defaultTemperature)}
}

// Generate выполняет один вызов модели без повторов.
func (o *OpenAI) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: temperatureOr(opts.Temperature, o.temperature),
		MaxTokens:   opts.MaxTokens,
		Messages:    []openai.ChatMessage{{Role: openai.RoleUser, Content: prompt}},
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	return checkReply("openai", resp.Text(), err, opts)
}
