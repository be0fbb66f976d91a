package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/logger"
)

const (
	imageMaxRetries     = 3
	defaultFallbackBase = "https://source.unsplash.com/800x600/"

	fallbackKeywords      = "food,delicious"
	errorFallbackKeywords = "food,recipe"
)

var nonLetters = regexp.MustCompile(`[^a-zA-Z\s]`)

// ObjectStore persists generated images somewhere the browser can reach.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// imageGenerationRequest represents a request to the OpenAI images API
type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url,omitempty"`
	} `json:"data"`
}

// ImageService finds an illustration for a recipe. A configured image model is
// tried first; every failure ends in a photo-search URL built from the prompt.
type ImageService struct {
	client       *resty.Client
	apiKey       string
	apiURL       string
	model        string
	size         string
	enabled      bool
	fallbackBase string
	store        ObjectStore
	retryDelay   time.Duration
}

// NewImageService creates an ImageService. store may be nil, in which case
// provider URLs are returned without mirroring.
func NewImageService(cfg config.ImageConfig, store ObjectStore) *ImageService {
	fallbackBase := cfg.FallbackBaseURL
	if fallbackBase == "" {
		fallbackBase = defaultFallbackBase
	}

	return &ImageService{
		client:       resty.New().SetTimeout(cfg.Timeout),
		apiKey:       cfg.APIKey,
		apiURL:       cfg.APIURL,
		model:        cfg.Model,
		size:         cfg.Size,
		enabled:      cfg.Enabled && cfg.APIKey != "",
		fallbackBase: fallbackBase,
		store:        store,
		retryDelay:   time.Second,
	}
}

// GenerateImage returns an image URL for prompt. The only error is a
// cancelled context; provider failures fall back to a photo-search URL.
func (s *ImageService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !s.enabled {
		return s.FallbackURL(prompt, false), nil
	}

	imageURL, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		logger.Warn("[ImageService] Image generation failed, using fallback", zap.Error(err))
		return s.FallbackURL(prompt, true), nil
	}
	return imageURL, nil
}

// FallbackURL builds the photo-search URL for prompt. Only letters and
// whitespace of the prompt are kept.
func (s *ImageService) FallbackURL(prompt string, afterError bool) string {
	keywords := fallbackKeywords
	if afterError {
		keywords = errorFallbackKeywords
	}
	terms := strings.TrimSpace(nonLetters.ReplaceAllString(prompt, ""))
	return s.fallbackBase + "?" + url.PathEscape(terms) + "," + keywords
}

func (s *ImageService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= imageMaxRetries; attempt++ {
		logger.Debug("[ImageService] Image generation attempt", zap.Int("attempt", attempt))

		imageURL, err := s.generateImageAttempt(ctx, prompt)
		if err == nil {
			return imageURL, nil
		}
		lastErr = err
		logger.Warn("[ImageService] Attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == imageMaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryDelay):
		}
	}
	return "", fmt.Errorf("failed to generate image after %d attempts: %w", imageMaxRetries, lastErr)
}

func (s *ImageService) generateImageAttempt(ctx context.Context, prompt string) (string, error) {
	var result imageGenerationResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetBody(imageGenerationRequest{
			Model:          s.model,
			Prompt:         prompt,
			N:              1,
			Size:           s.size,
			Quality:        "standard",
			ResponseFormat: "url",
		}).
		SetResult(&result).
		// some OpenAI-compatible providers omit the JSON content type
		ForceContentType("application/json").
		Post(s.apiURL)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode())
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", errors.New("no image URL in API response")
	}

	imageURL := result.Data[0].URL
	if s.store == nil {
		return imageURL, nil
	}

	mirrored, err := s.mirror(ctx, imageURL)
	if err != nil {
		logger.Warn("[ImageService] Failed to mirror image, returning provider URL", zap.Error(err))
		return imageURL, nil
	}
	return mirrored, nil
}

// mirror copies a provider image into the object store; provider URLs expire.
func (s *ImageService) mirror(ctx context.Context, imageURL string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	key := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())

	publicURL, err := s.store.Upload(ctx, key, resp.Body(), contentType)
	if err != nil {
		return "", err
	}
	logger.Info("[ImageService] Uploaded image", zap.String("url", publicURL))
	return publicURL, nil
}
