package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CampaignPilot/internal/genai"
)

// Analyzer computes campaign metrics and asks the generator for a narrative.
type Analyzer struct {
	gen genai.Generator
}

// NewAnalyzer creates an Analyzer backed by gen.
func NewAnalyzer(gen genai.Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

// Analyze returns {metrics, issues, market_context, analysis}. Missing metric
// inputs and generator failures are returned as errors.
func (a *Analyzer) Analyze(ctx context.Context, data map[string]any) (map[string]any, error) {
	metrics, err := CalculateMetrics(data)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate metrics: %w", err)
	}
	issues := DetectPatterns(data)
	marketContext, _ := data["market_context"].(map[string]any)
	if marketContext == nil {
		marketContext = map[string]any{}
	}

	issueText := "None"
	if len(issues) > 0 {
		issueText = "- " + strings.Join(issues, "\n- ")
	}
	prompt := fmt.Sprintf(analysisPromptFormat, toJSON(data), toJSON(metrics), issueText, toJSON(marketContext))

	narrative, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Analyzer.Analyze: generation failed", "error", err)
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}
	slog.Debug("Analyzer.Analyze: analysis complete", "issues", len(issues))

	metricValues := make(map[string]any, len(metrics))
	for k, v := range metrics {
		metricValues[k] = v
	}
	issueValues := make([]any, len(issues))
	for i, s := range issues {
		issueValues[i] = s
	}
	return map[string]any{
		"metrics":        metricValues,
		"issues":         issueValues,
		"market_context": marketContext,
		"analysis":       narrative,
	}, nil
}
