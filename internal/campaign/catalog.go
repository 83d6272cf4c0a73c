// Package campaign implements the campaign data lookup capability and the content
// generators used by the workflow stages: metric analysis, recommendations and summaries.
package campaign

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCampaignID is the campaign looked up when none is configured.
const DefaultCampaignID = "CAMPAIGN123"

//go:embed default_campaign.json
var defaultCampaignJSON []byte

var (
	// ErrCampaignNotFound is returned when the requested campaign id is not in the catalog.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrUnsupportedFormat is returned for catalog files that are neither YAML nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported campaign data format")
)

// Catalog holds campaign records keyed by campaign_id.
type Catalog struct {
	records map[string]map[string]any
	order   []string
}

// DefaultCatalog returns the catalog built from the embedded sample campaign.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCampaignJSON, ".json")
}

// LoadCatalog reads a catalog file. The extension selects the format: .yaml/.yml or .json.
// A file may hold a single record or a list under the "campaigns" key.
func LoadCatalog(path string) (*Catalog, error) {
	slog.Debug("campaign.LoadCatalog: reading catalog", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("campaign.LoadCatalog: failed to read file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to read campaign data: %w", err)
	}
	return ParseCatalog(data, filepath.Ext(path))
}

// ParseCatalog decodes catalog bytes in the format named by ext.
func ParseCatalog(data []byte, ext string) (*Catalog, error) {
	var raw map[string]any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse campaign YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse campaign JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	c := &Catalog{records: make(map[string]map[string]any)}
	list, hasList := raw["campaigns"].([]any)
	if !hasList {
		if err := c.add(raw); err != nil {
			return nil, err
		}
		return c, nil
	}
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("campaign entry %d is not an object", i)
		}
		if err := c.add(rec); err != nil {
			return nil, err
		}
	}
	slog.Debug("campaign.ParseCatalog: catalog parsed", "count", len(c.order))
	return c, nil
}

func (c *Catalog) add(rec map[string]any) error {
	id, _ := rec["campaign_id"].(string)
	if id == "" {
		return errors.New("campaign record missing campaign_id")
	}
	if _, dup := c.records[id]; dup {
		return fmt.Errorf("duplicate campaign_id %s", id)
	}
	c.records[id] = rec
	c.order = append(c.order, id)
	return nil
}

// IDs lists campaign ids in file order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Campaign returns a deep copy of the record with the given id.
func (c *Catalog) Campaign(id string) (map[string]any, error) {
	rec, ok := c.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
	}
	return deepCopy(rec).(map[string]any), nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// number converts decoded JSON/YAML numbers to float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
