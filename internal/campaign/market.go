package campaign

import (
	"context"
	"strings"
)

// Market keywords used to pick trends and background topics.
const (
	KeywordFintech          = "fintech"
	KeywordEcommerce        = "ecommerce"
	KeywordDigitalMarketing = "digital marketing"
	KeywordSocialMedia      = "social media"
)

// NoTrendData is reported for keywords missing from the trend table.
const NoTrendData = "No trend data available"

var marketTrends = map[string]string{
	KeywordFintech:          "Growing adoption of digital payments, rise in mobile banking",
	KeywordEcommerce:        "Increased mobile shopping, social commerce growth",
	KeywordDigitalMarketing: "Focus on personalization, rise of video content",
	KeywordSocialMedia:      "Short-form video dominance, increased ad spend",
}

var backgroundTopics = map[string]string{
	KeywordFintech:          "Financial technology",
	KeywordEcommerce:        "E-commerce",
	KeywordDigitalMarketing: "Digital marketing",
}

// MarketTrends returns the trend text for a keyword.
func MarketTrends(keyword string) string {
	if t, ok := marketTrends[strings.ToLower(keyword)]; ok {
		return t
	}
	return NoTrendData
}

// MarketKeyword picks the market keyword for a campaign name.
func MarketKeyword(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, KeywordFintech):
		return KeywordFintech
	case strings.Contains(lower, KeywordEcommerce):
		return KeywordEcommerce
	default:
		return KeywordDigitalMarketing
	}
}

// BackgroundTopic returns the encyclopedia topic for a market keyword.
func BackgroundTopic(keyword string) string {
	if t, ok := backgroundTopics[keyword]; ok {
		return t
	}
	return backgroundTopics[KeywordDigitalMarketing]
}

// BackgroundLookup fetches short background text about a topic.
type BackgroundLookup interface {
	Summary(ctx context.Context, topic string) (string, error)
}
