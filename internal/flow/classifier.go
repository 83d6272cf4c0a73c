package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BTreeMap/CampaignPilot/internal/genai"
	"github.com/BTreeMap/CampaignPilot/internal/models"
)

const (
	emptyInputExplanation = "No user input provided"
	defaultConfidence     = 0.5

	typePrefix        = "TYPE:"
	confidencePrefix  = "CONFIDENCE:"
	explanationPrefix = "EXPLANATION:"
)

const classificationPromptFormat = `Analyze the following user input and classify it as one of these categories:
- SUMMARY: User wants a summary or analysis of the campaign
- RECOMMENDATION: User wants specific recommendations or improvements
- DONE: User indicates they are finished or satisfied
- OTHER: Any other type of input

Examples:
- "Show me the campaign performance" -> SUMMARY
- "What should we improve?" -> RECOMMENDATION
- "That's all, thanks!" -> DONE
- "Can you explain this?" -> OTHER

User Input: %s

Provide your response in this format:
TYPE: [SUMMARY/RECOMMENDATION/DONE/OTHER]
CONFIDENCE: [0-1]
EXPLANATION: [brief explanation]`

// IntentClassifier classifies user input with a text-generation capability.
type IntentClassifier struct {
	gen genai.Generator
}

// NewIntentClassifier creates a classifier backed by gen.
func NewIntentClassifier(gen genai.Generator) *IntentClassifier {
	return &IntentClassifier{gen: gen}
}

// Classify never fails. Empty input is OTHER with full confidence and no generator
// call; generator and parse failures are OTHER with confidence 0.5.
func (c *IntentClassifier) Classify(ctx context.Context, userInput string) models.Classification {
	if strings.TrimSpace(userInput) == "" {
		return models.Classification{
			Type:        models.IntentOther,
			Confidence:  1.0,
			Explanation: emptyInputExplanation,
		}
	}

	reply, err := c.gen.Generate(ctx, fmt.Sprintf(classificationPromptFormat, userInput))
	if err != nil {
		slog.Warn("IntentClassifier.Classify: generation failed", "error", err)
		return fallbackClassification(userInput, err)
	}
	result, err := ParseClassification(reply)
	if err != nil {
		slog.Warn("IntentClassifier.Classify: unparseable reply", "error", err, "reply", reply)
		return fallbackClassification(userInput, err)
	}
	result.OriginalInput = userInput
	if result.Confidence < 0 || result.Confidence > 1 {
		slog.Warn("IntentClassifier.Classify: confidence out of range", "confidence", result.Confidence)
	}
	slog.Debug("IntentClassifier.Classify: classified", "intent", result.Type, "confidence", result.Confidence)
	return result
}

func fallbackClassification(userInput string, err error) models.Classification {
	return models.Classification{
		Type:          models.IntentOther,
		Confidence:    defaultConfidence,
		Explanation:   fmt.Sprintf("Error in classification: %v", err),
		OriginalInput: userInput,
	}
}

// ParseClassification reads the three-line TYPE/CONFIDENCE/EXPLANATION reply.
// Lines that cannot be parsed are skipped and defaults (OTHER, 0.5) kept; an
// unknown TYPE token is an error.
func ParseClassification(reply string) (models.Classification, error) {
	result := models.Classification{Type: models.IntentOther, Confidence: defaultConfidence}
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, typePrefix):
			intent, err := models.ParseIntent(strings.TrimPrefix(line, typePrefix))
			if err != nil {
				return models.Classification{}, err
			}
			result.Type = intent
		case strings.HasPrefix(line, confidencePrefix):
			f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, confidencePrefix)), 64)
			if err != nil {
				slog.Debug("ParseClassification: skipping malformed confidence", "line", line)
				continue
			}
			result.Confidence = f
		case strings.HasPrefix(line, explanationPrefix):
			result.Explanation = strings.TrimSpace(strings.TrimPrefix(line, explanationPrefix))
		}
	}
	return result, nil
}
