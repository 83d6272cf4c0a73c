package campaign

import (
	"errors"
	"fmt"
)

// ErrMetricInput is returned when a metric cannot be computed from the campaign record.
var ErrMetricInput = errors.New("invalid metric input")

// Metric names produced by CalculateMetrics.
const (
	MetricCTR               = "ctr"
	MetricConversionRate    = "conversion_rate"
	MetricCostPerClick      = "cost_per_click"
	MetricCostPerConversion = "cost_per_conversion"
	MetricROI               = "roi"
	MetricCTRVsTarget       = "ctr_vs_target"
	MetricROIVsTarget       = "roi_vs_target"
)

func field(data map[string]any, key string) (float64, error) {
	v, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrMetricInput, key)
	}
	f, ok := number(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrMetricInput, key)
	}
	return f, nil
}

func ratio(num, den float64, name string) (float64, error) {
	if den == 0 {
		return 0, fmt.Errorf("%w: division by zero computing %s", ErrMetricInput, name)
	}
	return num / den, nil
}

// CalculateMetrics computes the key performance metrics of a campaign. Rates are
// percentages. Targets, when present, are fractions and are compared in percent.
func CalculateMetrics(data map[string]any) (map[string]float64, error) {
	var vals [5]float64
	for i, key := range []string{"impressions", "clicks", "conversions", "spend", "revenue"} {
		f, err := field(data, key)
		if err != nil {
			return nil, err
		}
		vals[i] = f
	}
	impressions, clicks, conversions, spend, revenue := vals[0], vals[1], vals[2], vals[3], vals[4]

	metrics := make(map[string]float64, 7)
	steps := []struct {
		name     string
		num, den float64
		scale    float64
	}{
		{MetricCTR, clicks, impressions, 100},
		{MetricConversionRate, conversions, clicks, 100},
		{MetricCostPerClick, spend, clicks, 1},
		{MetricCostPerConversion, spend, conversions, 1},
		{MetricROI, revenue - spend, spend, 100},
	}
	for _, s := range steps {
		r, err := ratio(s.num, s.den, s.name)
		if err != nil {
			return nil, err
		}
		metrics[s.name] = r * s.scale
	}

	if v, ok := data["target_ctr"]; ok {
		if target, ok := number(v); ok {
			metrics[MetricCTRVsTarget] = metrics[MetricCTR] - target*100
		}
	}
	if v, ok := data["target_roi"]; ok {
		if target, ok := number(v); ok {
			metrics[MetricROIVsTarget] = metrics[MetricROI] - target*100
		}
	}
	return metrics, nil
}

// pattern is a named performance check. Checks whose inputs are missing or zero are skipped.
type pattern struct {
	message string
	check   func(data map[string]any) (bool, error)
}

// rateCheck compares (num - offset*den) / den against a threshold; above selects the direction.
func rateCheck(numKey, denKey string, offset bool, threshold float64, above bool) func(map[string]any) (bool, error) {
	return func(data map[string]any) (bool, error) {
		num, err := field(data, numKey)
		if err != nil {
			return false, err
		}
		den, err := field(data, denKey)
		if err != nil {
			return false, err
		}
		if offset {
			num -= den
		}
		r, err := ratio(num, den, numKey+"/"+denKey)
		if err != nil {
			return false, err
		}
		if above {
			return r > threshold, nil
		}
		return r < threshold, nil
	}
}

var performancePatterns = []pattern{
	{"CTR below 2%", rateCheck("clicks", "impressions", false, 0.02, false)},
	{"Cost per click above $5", rateCheck("spend", "clicks", false, 5, true)},
	{"ROI below 100%", rateCheck("revenue", "spend", true, 1, false)},
	{"Conversion rate below 5%", rateCheck("conversions", "clicks", false, 0.05, false)},
}

// DetectPatterns returns the messages of every concerning pattern found in the record.
func DetectPatterns(data map[string]any) []string {
	issues := []string{}
	for _, p := range performancePatterns {
		hit, err := p.check(data)
		if err != nil {
			continue
		}
		if hit {
			issues = append(issues, p.message)
		}
	}
	return issues
}
