// Package flow implements the conversation-aware workflow for one chat turn.
//
// A turn threads an immutable State through a fixed graph of nodes: the input is
// classified, campaign data is gathered and analyzed, and either recommendations or a
// summary are generated. The Orchestrator wraps a run and formats the terminal state.
package flow

import (
	"context"
	"errors"

	"github.com/BTreeMap/CampaignPilot/internal/campaign"
	"github.com/BTreeMap/CampaignPilot/internal/models"
)

var (
	// ErrMissingCampaignData is returned when a stage needs gathered data that is absent.
	ErrMissingCampaignData = errors.New("campaign data is missing")
	// ErrMissingAnalysis is returned when a stage needs analysis results that are absent.
	ErrMissingAnalysis = errors.New("analysis results are missing")
	// ErrNodeReentered is returned when a run would visit the same node twice.
	ErrNodeReentered = errors.New("node re-entered within one turn")
	// ErrUnknownNode is returned for a node the engine has no handler for.
	ErrUnknownNode = errors.New("unknown node")
)

// Classifier maps user input to an intent. Implementations must not fail; parse
// problems are reported as a low-confidence OTHER classification.
type Classifier interface {
	Classify(ctx context.Context, userInput string) models.Classification
}

// DataSource supplies the campaign record for a turn.
type DataSource interface {
	Gather(ctx context.Context) (map[string]any, error)
}

// Analyzer turns a campaign record into analysis results.
type Analyzer interface {
	Analyze(ctx context.Context, data map[string]any) (map[string]any, error)
}

// Recommender produces ordered recommendation strings.
type Recommender interface {
	Recommend(ctx context.Context, req campaign.RecommendationRequest) ([]string, error)
}

// Summarizer produces summary text.
type Summarizer interface {
	Summarize(ctx context.Context, data, analysis map[string]any, userInput string, history []models.Message) (string, error)
}

// MetricsRecorder receives turn instrumentation. metrics.Recorder implements it.
type MetricsRecorder interface {
	ObserveClassification(intent string)
	ObserveStageFailure(node string, fatal bool)
	ObserveTurn(intent, outcome string, seconds float64)
}

type noopMetrics struct{}

func (noopMetrics) ObserveClassification(string)        {}
func (noopMetrics) ObserveStageFailure(string, bool)    {}
func (noopMetrics) ObserveTurn(string, string, float64) {}
