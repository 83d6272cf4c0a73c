package campaign

import (
	"context"
	"fmt"
	"log/slog"
)

// Gatherer loads a campaign record from a catalog and enriches it with market context.
type Gatherer struct {
	catalog    *Catalog
	campaignID string
	background BackgroundLookup
}

// GathererOption configures a Gatherer.
type GathererOption func(*Gatherer)

// WithCampaignID selects the campaign to gather.
func WithCampaignID(id string) GathererOption {
	return func(g *Gatherer) {
		if id != "" {
			g.campaignID = id
		}
	}
}

// WithBackgroundLookup enables background enrichment. Without it the background is empty.
func WithBackgroundLookup(b BackgroundLookup) GathererOption {
	return func(g *Gatherer) {
		g.background = b
	}
}

// NewGatherer creates a Gatherer over catalog.
func NewGatherer(catalog *Catalog, opts ...GathererOption) *Gatherer {
	g := &Gatherer{catalog: catalog, campaignID: DefaultCampaignID}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gather returns the campaign record with market_context{trends, background} added
// when the record has a name.
func (g *Gatherer) Gather(ctx context.Context) (map[string]any, error) {
	if g.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog loaded", ErrCampaignNotFound)
	}
	data, err := g.catalog.Campaign(g.campaignID)
	if err != nil {
		slog.Error("Gatherer.Gather: lookup failed", "campaignID", g.campaignID, "error", err)
		return nil, err
	}

	name, _ := data["name"].(string)
	if name == "" {
		return data, nil
	}
	keyword := MarketKeyword(name)
	data["market_context"] = map[string]any{
		"trends":     MarketTrends(keyword),
		"background": g.lookupBackground(ctx, keyword),
	}
	slog.Debug("Gatherer.Gather: campaign loaded", "campaignID", g.campaignID, "keyword", keyword)
	return data, nil
}

func (g *Gatherer) lookupBackground(ctx context.Context, keyword string) string {
	if g.background == nil {
		return ""
	}
	topic := BackgroundTopic(keyword)
	text, err := g.background.Summary(ctx, topic)
	if err != nil {
		slog.Warn("Gatherer.lookupBackground: lookup failed", "topic", topic, "error", err)
		return fmt.Sprintf("Error fetching Wikipedia info: %v", err)
	}
	return text
}
