package flow

import (
	"context"
	"sync"

	"github.com/BTreeMap/CampaignPilot/internal/campaign"
	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// MockGenerator returns a fixed reply and counts calls.
type MockGenerator struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Calls   int
	Prompts []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	return m.Reply, m.Err
}

type fixedClassifier struct {
	intent models.Intent
	calls  int
}

func (f *fixedClassifier) Classify(ctx context.Context, userInput string) models.Classification {
	f.calls++
	return models.Classification{Type: f.intent, Confidence: 0.9, Explanation: "fixed", OriginalInput: userInput}
}

type MockDataSource struct {
	Data  map[string]any
	Err   error
	Calls int
}

func (m *MockDataSource) Gather(ctx context.Context) (map[string]any, error) {
	m.Calls++
	return m.Data, m.Err
}

type mockAnalyzer struct {
	result map[string]any
	err    error
	panics bool
	calls  int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, data map[string]any) (map[string]any, error) {
	m.calls++
	if m.panics {
		panic("analyzer exploded")
	}
	return m.result, m.err
}

type mockRecommender struct {
	recs  []string
	err   error
	calls int
	last  campaign.RecommendationRequest
}

func (m *mockRecommender) Recommend(ctx context.Context, req campaign.RecommendationRequest) ([]string, error) {
	m.calls++
	m.last = req
	return m.recs, m.err
}

type mockSummarizer struct {
	text  string
	err   error
	calls int
}

func (m *mockSummarizer) Summarize(ctx context.Context, data, analysis map[string]any, userInput string, history []models.Message) (string, error) {
	m.calls++
	return m.text, m.err
}

type recordedTurn struct {
	intent, outcome string
}

type mockMetrics struct {
	classifications []string
	failures        []string
	turns           []recordedTurn
}

func (m *mockMetrics) ObserveClassification(intent string) {
	m.classifications = append(m.classifications, intent)
}

func (m *mockMetrics) ObserveStageFailure(node string, fatal bool) {
	m.failures = append(m.failures, node)
}

func (m *mockMetrics) ObserveTurn(intent, outcome string, seconds float64) {
	m.turns = append(m.turns, recordedTurn{intent, outcome})
}

// testCaps bundles the mocks of one test.
type testCaps struct {
	classifier  *fixedClassifier
	data        *MockDataSource
	analyzer    *mockAnalyzer
	recommender *mockRecommender
	summarizer  *mockSummarizer
}

func newTestCaps(intent models.Intent) *testCaps {
	return &testCaps{
		classifier:  &fixedClassifier{intent: intent},
		data:        &MockDataSource{Data: map[string]any{"campaign_id": "CAMPAIGN123", "name": "Fintech"}},
		analyzer:    &mockAnalyzer{result: map[string]any{"analysis": "fine"}},
		recommender: &mockRecommender{recs: []string{"Priority 1: Improve CTR"}},
		summarizer:  &mockSummarizer{text: "Campaign summary"},
	}
}

func (c *testCaps) capabilities() Capabilities {
	return Capabilities{
		Classifier:  c.classifier,
		DataSource:  c.data,
		Analyzer:    c.analyzer,
		Recommender: c.recommender,
		Summarizer:  c.summarizer,
	}
}
