package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp       openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
	calls      int
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	m.calls++
	m.lastParams = params
	return m.resp, m.err
}

func completionWith(content string) openai.ChatCompletion {
	return openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	mock := &mockChatService{resp: completionWith("Hello World")}
	client := &Client{chat: mock, model: "test-model", temperature: 0.3}
	out, err := client.Generate(context.Background(), "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Hello World" {
		t.Errorf("expected 'Hello World', got '%s'", out)
	}
	if len(mock.lastParams.Messages) != 1 {
		t.Errorf("expected a single user message, got %d", len(mock.lastParams.Messages))
	}
	if string(mock.lastParams.Model) != "test-model" {
		t.Errorf("expected model test-model, got %s", mock.lastParams.Model)
	}
}

func TestGeneratePrompt_SystemAndUser(t *testing.T) {
	mock := &mockChatService{resp: completionWith("ok")}
	client := &Client{chat: mock, model: "test-model"}
	if _, err := client.GeneratePrompt(context.Background(), "sys", "usr"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.lastParams.Messages) != 2 {
		t.Errorf("expected system and user messages, got %d", len(mock.lastParams.Messages))
	}
}

func TestGenerate_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}}
	_, err := client.Generate(context.Background(), "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{}}}
	_, err := client.Generate(context.Background(), "usr")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	_, err := NewClient()
	if !errors.Is(err, ErrAPIKeyNotSet) {
		t.Errorf("expected ErrAPIKeyNotSet, got %v", err)
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-test"), WithTemperature(0.9), WithMaxTokens(64))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli.model != "gpt-test" || cli.temperature != 0.9 || cli.maxTokens != 64 {
		t.Errorf("options not applied: %+v", cli)
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cli.model != DefaultOpenAIModel {
		t.Errorf("expected default model %s, got %s", DefaultOpenAIModel, cli.model)
	}
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := NewGenerator(context.Background(), "carrier-pigeon", WithAPIKey("k"))
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewGenerator_OpenAIWithRateLimit(t *testing.T) {
	gen, err := NewGenerator(context.Background(), "OpenAI", WithAPIKey("k"), WithRateLimit(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*RateLimitedGenerator); !ok {
		t.Errorf("expected rate limited generator, got %T", gen)
	}
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return strings.ToUpper(prompt), nil
	})
	out, _ := g.Generate(context.Background(), "abc")
	if out != "ABC" {
		t.Errorf("expected ABC, got %s", out)
	}
}
