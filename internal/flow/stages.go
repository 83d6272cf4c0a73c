package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/CampaignPilot/internal/campaign"
)

// Fallback texts substituted by the degrading stages.
const (
	NoRecommendationsText       = "No specific recommendations available at this time."
	RecommendationFailurePrefix = "Unable to generate recommendations: "
	SummaryFailureText          = "Unable to generate summary at this time."
)

// Capabilities are the external collaborators a turn consults.
type Capabilities struct {
	Classifier  Classifier
	DataSource  DataSource
	Analyzer    Analyzer
	Recommender Recommender
	Summarizer  Summarizer
}

// Opts configures the stage handlers and the orchestrator.
type Opts struct {
	Metrics MetricsRecorder
	Clock   func() time.Time
}

// Option is a functional option for NewStages and NewOrchestrator.
type Option func(*Opts)

// WithMetrics sets the recorder for turn instrumentation.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *Opts) {
		o.Metrics = m
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = clock
	}
}

func applyOpts(opts []Option) Opts {
	o := Opts{Metrics: noopMetrics{}, Clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Metrics == nil {
		o.Metrics = noopMetrics{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Stages implements the workflow node handlers over a set of capabilities.
type Stages struct {
	caps    Capabilities
	metrics MetricsRecorder
	now     func() time.Time
}

// NewStages creates the stage handlers.
func NewStages(caps Capabilities, opts ...Option) *Stages {
	o := applyOpts(opts)
	return &Stages{caps: caps, metrics: o.Metrics, now: o.Clock}
}

func (st *Stages) timestamp() string {
	return st.now().Format(time.RFC3339Nano)
}

// AnalyzeInput classifies the user input.
func (st *Stages) AnalyzeInput(ctx context.Context, s State) (State, error) {
	if st.caps.Classifier == nil {
		return s, fmt.Errorf("no classifier configured")
	}
	c := st.caps.Classifier.Classify(ctx, s.UserInput())
	st.metrics.ObserveClassification(string(c.Type))
	return s.WithClassification(c)
}

// GatherData loads the campaign record. Failure is fatal to the turn.
func (st *Stages) GatherData(ctx context.Context, s State) (State, error) {
	if st.caps.DataSource == nil {
		return s, fmt.Errorf("%w: no data source configured", ErrMissingCampaignData)
	}
	data, err := st.caps.DataSource.Gather(ctx)
	if err != nil {
		return s, err
	}
	if len(data) == 0 {
		return s, ErrMissingCampaignData
	}
	return s.WithCampaignData(data), nil
}

// AnalyzeData analyzes the gathered record. Failure is fatal to the turn.
func (st *Stages) AnalyzeData(ctx context.Context, s State) (State, error) {
	if len(s.CampaignData()) == 0 {
		return s, ErrMissingCampaignData
	}
	if st.caps.Analyzer == nil {
		return s, fmt.Errorf("no analyzer configured")
	}
	analysis, err := st.caps.Analyzer.Analyze(ctx, s.CampaignData())
	if err != nil {
		return s, err
	}
	if len(analysis) == 0 {
		return s, ErrMissingAnalysis
	}
	return s.WithAnalysis(analysis), nil
}

// GenerateRecommendations never fails: problems become a labeled fallback with an
// error entry in the recommendation context. A turn with neither input nor feedback
// has nothing to answer and yields no recommendations.
func (st *Stages) GenerateRecommendations(ctx context.Context, s State) State {
	hadPrevious := s.Context().HadPreviousInteraction()
	if strings.TrimSpace(s.UserInput()) == "" && strings.TrimSpace(s.Feedback()) == "" {
		slog.Debug("Stages.GenerateRecommendations: empty request, skipping")
		return s.WithRecommendations(nil, map[string]any{
			"timestamp":                st.timestamp(),
			"template_used":            false,
			"had_previous_interaction": hadPrevious,
		})
	}

	recs, err := st.recommend(ctx, s)
	if err != nil {
		slog.Warn("Stages.GenerateRecommendations: degraded", "error", err)
		st.metrics.ObserveStageFailure(string(NodeGenerateRecommendations), false)
		return s.WithRecommendations([]string{RecommendationFailurePrefix + err.Error()}, map[string]any{
			"timestamp": st.timestamp(),
			"error":     err.Error(),
		})
	}
	if len(recs) == 0 {
		recs = []string{NoRecommendationsText}
	}
	return s.WithRecommendations(recs, map[string]any{
		"timestamp":                st.timestamp(),
		"template_used":            true,
		"had_previous_interaction": hadPrevious,
	})
}

func (st *Stages) recommend(ctx context.Context, s State) ([]string, error) {
	if len(s.CampaignData()) == 0 {
		return nil, ErrMissingCampaignData
	}
	if len(s.Analysis()) == 0 {
		return nil, ErrMissingAnalysis
	}
	if st.caps.Recommender == nil {
		return nil, fmt.Errorf("no recommender configured")
	}
	return st.caps.Recommender.Recommend(ctx, campaign.RecommendationRequest{
		CampaignData: s.CampaignData(),
		Analysis:     s.Analysis(),
		UserInput:    s.UserInput(),
		Feedback:     s.Feedback(),
		History:      s.Context().ConversationHistory,
	})
}

// GenerateSummary never fails: problems become a labeled fallback summary.
func (st *Stages) GenerateSummary(ctx context.Context, s State) State {
	content, err := st.summarize(ctx, s)
	if err != nil {
		slog.Warn("Stages.GenerateSummary: degraded", "error", err)
		st.metrics.ObserveStageFailure(string(NodeGenerateSummary), false)
		return s.WithSummary(map[string]any{
			"content": SummaryFailureText,
			"error":   err.Error(),
		})
	}
	return s.WithSummary(map[string]any{
		"content":   content,
		"timestamp": st.timestamp(),
		"context": map[string]any{
			"had_previous_interaction": s.Context().HadPreviousInteraction(),
		},
	})
}

func (st *Stages) summarize(ctx context.Context, s State) (string, error) {
	if len(s.CampaignData()) == 0 {
		return "", ErrMissingCampaignData
	}
	if len(s.Analysis()) == 0 {
		return "", ErrMissingAnalysis
	}
	if st.caps.Summarizer == nil {
		return "", fmt.Errorf("no summarizer configured")
	}
	return st.caps.Summarizer.Summarize(ctx, s.CampaignData(), s.Analysis(), s.UserInput(), s.Context().ConversationHistory)
}
