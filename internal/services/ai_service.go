package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/vladimiradmaev/protein-tracker/internal/config"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// AIService sends prompts to the configured provider through a process-wide throttle
type AIService struct {
	provider domain.SuggestionProvider
	throttle *rate.Limiter
	logger   *slog.Logger
	closeFn  func() error
}

// NewAIService builds the provider selected by cfg.Provider
func NewAIService(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (*AIService, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxOutputTokens)
		if err != nil {
			return nil, err
		}
		svc := NewAIServiceWithProvider(gemini, cfg.RequestsPerSecond, logger)
		svc.closeFn = gemini.Close
		return svc, nil
	case config.ProviderOpenAI:
		oa := NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.MaxOutputTokens)
		return NewAIServiceWithProvider(oa, cfg.RequestsPerSecond, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// NewAIServiceWithProvider wraps an existing provider
func NewAIServiceWithProvider(provider domain.SuggestionProvider, requestsPerSecond float64, logger *slog.Logger) *AIService {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &AIService{
		provider: provider,
		throttle: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:   logger.With("provider", provider.Name()),
	}
}

func (s *AIService) Name() string {
	return s.provider.Name()
}

// Complete waits for a throttle token under ctx, then makes a single provider call
func (s *AIService) Complete(ctx context.Context, prompt string) (string, error) {
	if err := s.throttle.Wait(ctx); err != nil {
		return "", fmt.Errorf("provider throttle: %w", err)
	}

	s.logger.Debug("Sending prompt", "prompt_length", len(prompt))
	return s.provider.Complete(ctx, prompt)
}

// Close releases the provider client
func (s *AIService) Close() error {
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

// GeminiProvider completes prompts with Google Gemini
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string, maxOutputTokens int) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetMaxOutputTokens(int32(maxOutputTokens))

	return &GeminiProvider{client: client, model: model, name: "gemini:" + modelName}, nil
}

func (p *GeminiProvider) Name() string {
	return p.name
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return geminiText(resp), nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// geminiText joins the text parts of the first candidate
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// OpenAIProvider completes prompts with the OpenAI chat API or a compatible server
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIProvider(apiKey, baseURL, model string, maxTokens int) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai:" + p.model
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:     p.model,
			MaxTokens: p.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
