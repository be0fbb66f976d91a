package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/logger"
)

const (
	defaultGeminiModel = "gemini-1.5-flash"
	defaultChatModel   = "deepseek-chat"
	defaultChatURL     = "https://api.deepseek.com/v1/chat/completions"
)

// TextGenerator sends a prompt to a text model and returns its raw reply.
// An empty or malformed reply is returned as-is; only transport and
// service failures are errors.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewTextGenerator builds the provider selected by cfg. Without an API key it
// returns a generator whose every call fails with ErrModelNotConfigured, so
// the server still starts and reports the problem per request.
func NewTextGenerator(ctx context.Context, cfg config.LLMConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("No text model API key configured; generation requests will fail",
			zap.String("provider", cfg.Provider))
		return unconfiguredGenerator{}, nil
	}

	logger.Info("Initializing text model",
		zap.String("provider", cfg.Provider),
		zap.String("api_key", config.MaskSecret(cfg.APIKey)),
	)

	switch cfg.Provider {
	case "openai":
		return NewChatCompletionGenerator(cfg), nil
	case "gemini", "":
		return NewGeminiGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

type unconfiguredGenerator struct{}

func (unconfiguredGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrModelNotConfigured
}

// GeminiGenerator calls Google's Gemini models through the generative-ai-go SDK.
type GeminiGenerator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

func NewGeminiGenerator(ctx context.Context, cfg config.LLMConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultGeminiModel
	}
	model := client.GenerativeModel(name)
	if cfg.Temperature > 0 {
		model.SetTemperature(float32(cfg.Temperature))
	}

	return &GeminiGenerator{client: client, model: model, timeout: cfg.Timeout}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Error("Gemini request failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	logger.Debug("Gemini request succeeded", zap.Duration("latency", time.Since(start)))

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return sb.String(), nil
}

// Close releases the SDK's underlying connection.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI-compatible chat completions request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ChatCompletionGenerator talks to any OpenAI-compatible chat completions
// endpoint. DeepSeek is the default.
type ChatCompletionGenerator struct {
	client      *resty.Client
	apiURL      string
	model       string
	temperature float64
}

func NewChatCompletionGenerator(cfg config.LLMConfig) *ChatCompletionGenerator {
	apiURL := cfg.BaseURL
	if apiURL == "" {
		apiURL = defaultChatURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultChatModel
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &ChatCompletionGenerator{
		client:      client,
		apiURL:      apiURL,
		model:       model,
		temperature: cfg.Temperature,
	}
}

func (g *ChatCompletionGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var result chatResponse
	start := time.Now()

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       g.model,
			Messages:    []Message{{Role: "user", Content: prompt}},
			Temperature: g.temperature,
		}).
		SetResult(&result).
		Post(g.apiURL)
	if err != nil {
		logger.Error("Chat completion request failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if resp.IsError() {
		logger.Error("Chat completion API returned an error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return "", fmt.Errorf("%w: API request failed with status %d", ErrGenerationFailed, resp.StatusCode())
	}
	logger.Debug("Chat completion request succeeded", zap.Duration("latency", time.Since(start)))

	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
