package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gemini "google.golang.org/genai"
)

// contentService defines the minimal interface for Gemini content generation.
type contentService interface {
	GenerateContent(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error)
}

// GeminiClient generates text with Google's Gemini API.
type GeminiClient struct {
	models      contentService
	model       string
	temperature float32
	maxTokens   int32
	debugMode   bool
	stateDir    string
}

var _ Generator = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, opts ...Option) (*GeminiClient, error) {
	cfg := applyOpts(opts)
	if cfg.APIKey == "" {
		slog.Error("genai.NewGeminiClient: Google API key not set")
		return nil, fmt.Errorf("gemini: %w", ErrAPIKeyNotSet)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := gemini.NewClient(ctx, &gemini.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: gemini.BackendGeminiAPI,
	})
	if err != nil {
		slog.Error("genai.NewGeminiClient: failed to create client", "error", err)
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	slog.Debug("genai.NewGeminiClient: Gemini client created", "model", model)
	return &GeminiClient{
		models:      client.Models,
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		debugMode:   cfg.DebugMode,
		stateDir:    cfg.StateDir,
	}, nil
}

// Generate sends the prompt as a single user turn.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	config := &gemini.GenerateContentConfig{
		Temperature: gemini.Ptr(g.temperature),
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}

	slog.Debug("genai.GeminiClient.Generate: sending request", "model", g.model)
	resp, err := g.models.GenerateContent(ctx, g.model, gemini.Text(prompt), config)
	if err != nil {
		slog.Error("genai.GeminiClient.Generate: request failed", "model", g.model, "error", err)
		g.recordDebug(prompt, "", err)
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		g.recordDebug(prompt, "", ErrNoChoicesReturned)
		return "", ErrNoChoicesReturned
	}
	text := strings.TrimSpace(resp.Text())
	g.recordDebug(prompt, text, nil)
	slog.Debug("genai.GeminiClient.Generate: response received", "model", g.model, "length", len(text))
	return text, nil
}

func (g *GeminiClient) recordDebug(prompt, response string, err error) {
	if !g.debugMode {
		return
	}
	writeDebugRecord(g.stateDir, debugRecord{
		Provider: ProviderGemini,
		Model:    g.model,
		Prompt:   prompt,
		Response: response,
		Error:    errString(err),
	})
}
