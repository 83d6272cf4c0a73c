package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

func TestClassify_EmptyInputNoCall(t *testing.T) {
	gen := &MockGenerator{Reply: "TYPE: SUMMARY"}
	c := NewIntentClassifier(gen)
	for _, in := range []string{"", "   "} {
		got := c.Classify(context.Background(), in)
		if got.Type != models.IntentOther || got.Confidence != 1.0 || got.Explanation != "No user input provided" {
			t.Errorf("Classify(%q) = %+v", in, got)
		}
	}
	if gen.Calls != 0 {
		t.Errorf("expected no generator calls, got %d", gen.Calls)
	}
}

func TestClassify_ParsesReply(t *testing.T) {
	gen := &MockGenerator{Reply: "TYPE: summary\nCONFIDENCE: 0.85\nEXPLANATION: wants an overview"}
	got := NewIntentClassifier(gen).Classify(context.Background(), "Show me the campaign performance")
	if got.Type != models.IntentSummary || got.Confidence != 0.85 || got.Explanation != "wants an overview" {
		t.Errorf("unexpected classification %+v", got)
	}
	if got.OriginalInput != "Show me the campaign performance" {
		t.Errorf("unexpected original input %q", got.OriginalInput)
	}
	if gen.Calls != 1 || !strings.Contains(gen.Prompts[0], "User Input: Show me the campaign performance") {
		t.Error("prompt should embed the user input")
	}
}

func TestClassify_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"unknown type", "TYPE: MAYBE\nCONFIDENCE: 0.9", nil},
		{"generator error", "", errors.New("rate limited")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewIntentClassifier(&MockGenerator{Reply: tt.reply, Err: tt.err}).Classify(context.Background(), "hello")
			if got.Type != models.IntentOther || got.Confidence != 0.5 {
				t.Errorf("unexpected classification %+v", got)
			}
			if !strings.HasPrefix(got.Explanation, "Error in classification: ") {
				t.Errorf("unexpected explanation %q", got.Explanation)
			}
		})
	}
}

func TestParseClassification_SkipsMalformedLines(t *testing.T) {
	got, err := ParseClassification("garbage\nTYPE: DONE\nCONFIDENCE: very\nEXPLANATION: finished")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != models.IntentDone || got.Confidence != 0.5 || got.Explanation != "finished" {
		t.Errorf("unexpected classification %+v", got)
	}
}

func TestParseClassification_Defaults(t *testing.T) {
	got, err := ParseClassification("I am not following the format")
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != models.IntentOther || got.Confidence != 0.5 || got.Explanation != "" {
		t.Errorf("unexpected defaults %+v", got)
	}
}

func TestParseClassification_OutOfRangeConfidenceKept(t *testing.T) {
	got, err := ParseClassification("TYPE: RECOMMENDATION\nCONFIDENCE: 1.7")
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != 1.7 {
		t.Errorf("confidence should pass through unclamped, got %v", got.Confidence)
	}
}
