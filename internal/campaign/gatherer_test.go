package campaign

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubBackground struct {
	text   string
	err    error
	topics []string
}

func (s *stubBackground) Summary(ctx context.Context, topic string) (string, error) {
	s.topics = append(s.topics, topic)
	return s.text, s.err
}

func TestGatherer_EnrichesMarketContext(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	bg := &stubBackground{text: "Fintech background"}
	g := NewGatherer(c, WithBackgroundLookup(bg))

	data, err := g.Gather(context.Background())
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	mc, ok := data["market_context"].(map[string]any)
	if !ok {
		t.Fatalf("market_context missing: %v", data)
	}
	if mc["trends"] != marketTrends[KeywordFintech] {
		t.Errorf("unexpected trends %v", mc["trends"])
	}
	if mc["background"] != "Fintech background" {
		t.Errorf("unexpected background %v", mc["background"])
	}
	if len(bg.topics) != 1 || bg.topics[0] != "Financial technology" {
		t.Errorf("unexpected topics %v", bg.topics)
	}
}

func TestGatherer_BackgroundFailureIsText(t *testing.T) {
	c, _ := DefaultCatalog()
	g := NewGatherer(c, WithBackgroundLookup(&stubBackground{err: errors.New("timeout")}))
	data, err := g.Gather(context.Background())
	if err != nil {
		t.Fatalf("background failure must not fail gathering: %v", err)
	}
	bg := data["market_context"].(map[string]any)["background"].(string)
	if !strings.HasPrefix(bg, "Error fetching Wikipedia info: ") || !strings.Contains(bg, "timeout") {
		t.Errorf("unexpected background %q", bg)
	}
}

func TestGatherer_NoBackgroundLookup(t *testing.T) {
	c, _ := DefaultCatalog()
	data, err := NewGatherer(c).Gather(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if bg := data["market_context"].(map[string]any)["background"]; bg != "" {
		t.Errorf("expected empty background, got %v", bg)
	}
}

func TestGatherer_UnknownCampaign(t *testing.T) {
	c, _ := DefaultCatalog()
	_, err := NewGatherer(c, WithCampaignID("NOPE")).Gather(context.Background())
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestGatherer_NilCatalog(t *testing.T) {
	if _, err := NewGatherer(nil).Gather(context.Background()); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestGatherer_NamelessRecordNotEnriched(t *testing.T) {
	c, err := ParseCatalog([]byte(`{"campaign_id":"X"}`), ".json")
	if err != nil {
		t.Fatal(err)
	}
	data, err := NewGatherer(c, WithCampaignID("X")).Gather(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := data["market_context"]; ok {
		t.Error("record without name should not be enriched")
	}
}
