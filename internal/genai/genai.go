// Package genai provides the text-generation capability used by CampaignPilot.
//
// Every provider satisfies Generator: a prompt goes in, text comes out. The workflow only
// depends on that shape, so providers are interchangeable and trivially faked in tests.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default generation settings.
const (
	DefaultOpenAIModel = string(openai.ChatModelGPT4oMini)
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1024
)

// Provider names accepted by NewGenerator.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var (
	// ErrAPIKeyNotSet is returned when a provider is constructed without credentials.
	ErrAPIKeyNotSet = errors.New("API key not set")
	// ErrNoChoicesReturned is returned when a provider answers without any content.
	ErrNoChoicesReturned = errors.New("no choices returned")
	// ErrUnknownProvider is returned by NewGenerator for unsupported provider names.
	ErrUnknownProvider = errors.New("unknown genai provider")
)

// Generator is the text-generation capability: generate(prompt) -> text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Opts holds configuration options for GenAI providers.
type Opts struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	DebugMode   bool   // write every request/response pair to disk
	StateDir    string // directory that receives the debug/ folder
	RateLimit   float64
}

// Option defines a configuration option for GenAI providers.
type Option func(*Opts)

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(o *Opts) { o.MaxTokens = n }
}

// WithDebugMode enables request/response debug records under stateDir/debug.
func WithDebugMode(enabled bool, stateDir string) Option {
	return func(o *Opts) {
		o.DebugMode = enabled
		o.StateDir = stateDir
	}
}

// WithRateLimit throttles calls to at most rps requests per second (0 disables).
func WithRateLimit(rps float64) Option {
	return func(o *Opts) { o.RateLimit = rps }
}

func applyOpts(opts []Option) Opts {
	cfg := Opts{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewGenerator builds the generator for the named provider, wrapped in a rate limiter when
// WithRateLimit is set.
func NewGenerator(ctx context.Context, provider string, opts ...Option) (Generator, error) {
	cfg := applyOpts(opts)
	var (
		gen Generator
		err error
	)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenAI:
		gen, err = NewClient(opts...)
	case ProviderGemini:
		gen, err = NewGeminiClient(ctx, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.RateLimit > 0 {
		gen = NewRateLimitedGenerator(gen, cfg.RateLimit)
	}
	slog.Debug("genai.NewGenerator: generator ready", "provider", provider, "rateLimit", cfg.RateLimit)
	return gen, nil
}

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completionsAdapter exposes the SDK completions service through chatService.
type completionsAdapter struct {
	svc *openai.ChatCompletionService
}

func (a completionsAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.svc.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat        chatService
	model       string
	temperature float64
	maxTokens   int
	debugMode   bool
	stateDir    string
}

var _ Generator = (*Client)(nil)

// NewClient initializes an OpenAI-backed client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := applyOpts(opts)
	if cfg.APIKey == "" {
		slog.Error("genai.NewClient: OpenAI API key not set")
		return nil, fmt.Errorf("openai: %w", ErrAPIKeyNotSet)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("genai.NewClient: OpenAI client created", "model", model, "debugMode", cfg.DebugMode)
	return &Client{
		chat:        completionsAdapter{svc: &cli.Chat.Completions},
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		debugMode:   cfg.DebugMode,
		stateDir:    cfg.StateDir,
	}, nil
}

// Generate sends the prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)}, prompt)
}

// GeneratePrompt generates a response from a system and a user prompt.
func (c *Client) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	}
	return c.complete(ctx, msgs, systemPrompt+"\n\n"+userPrompt)
}

func (c *Client) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion, promptForDebug string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    msgs,
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}

	slog.Debug("genai.Client.complete: sending request", "model", c.model, "messages", len(msgs))
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("genai.Client.complete: request failed", "model", c.model, "error", err)
		c.recordDebug(promptForDebug, "", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		slog.Warn("genai.Client.complete: no choices returned", "model", c.model)
		c.recordDebug(promptForDebug, "", ErrNoChoicesReturned)
		return "", ErrNoChoicesReturned
	}
	content := resp.Choices[0].Message.Content
	c.recordDebug(promptForDebug, content, nil)
	slog.Debug("genai.Client.complete: response received", "model", c.model, "length", len(content))
	return content, nil
}

func (c *Client) recordDebug(prompt, response string, err error) {
	if !c.debugMode {
		return
	}
	writeDebugRecord(c.stateDir, debugRecord{
		Provider: ProviderOpenAI,
		Model:    c.model,
		Prompt:   prompt,
		Response: response,
		Error:    errString(err),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
