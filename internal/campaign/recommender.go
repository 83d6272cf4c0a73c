package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CampaignPilot/internal/genai"
	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// priorityPrefix marks a recommendation block in generator output.
const priorityPrefix = "Priority"

// RecommendationRequest carries the inputs of one recommendation call.
type RecommendationRequest struct {
	CampaignData map[string]any
	Analysis     map[string]any
	UserInput    string
	Feedback     string
	History      []models.Message
}

// Recommender turns campaign analysis into prioritized recommendations.
type Recommender struct {
	gen genai.Generator
}

// NewRecommender creates a Recommender backed by gen.
func NewRecommender(gen genai.Generator) *Recommender {
	return &Recommender{gen: gen}
}

// Recommend returns the prioritized blocks of the generator's answer. An answer
// without any "Priority" block yields an empty slice.
func (r *Recommender) Recommend(ctx context.Context, req RecommendationRequest) ([]string, error) {
	name, _ := req.CampaignData["name"].(string)
	narrative, _ := req.Analysis["analysis"].(string)
	prompt := fmt.Sprintf(recommendationPromptFormat,
		FormatHistory(req.History),
		orNone(name),
		req.CampaignData["spend"],
		req.CampaignData["revenue"],
		orNone(narrative),
		orNone(trendsOf(req.CampaignData)),
		orNone(req.UserInput),
		orNone(req.Feedback),
	)

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Recommender.Recommend: generation failed", "error", err)
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}
	recs := ParseRecommendations(text)
	slog.Debug("Recommender.Recommend: parsed recommendations", "count", len(recs))
	return recs, nil
}

// ParseRecommendations splits text on blank lines and keeps blocks starting with "Priority".
func ParseRecommendations(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	recs := []string{}
	for _, block := range strings.Split(normalized, "\n\n") {
		block = strings.TrimSpace(block)
		if strings.HasPrefix(strings.TrimLeft(block, "*# "), priorityPrefix) {
			recs = append(recs, block)
		}
	}
	return recs
}
