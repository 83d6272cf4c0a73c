package campaign

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleRecord() map[string]any {
	return map[string]any{
		"impressions": 250000.0,
		"clicks":      4200.0,
		"conversions": 180.0,
		"spend":       18500.0,
		"revenue":     27000.0,
		"target_ctr":  0.02,
		"target_roi":  1.0,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateMetrics(t *testing.T) {
	m, err := CalculateMetrics(sampleRecord())
	if err != nil {
		t.Fatalf("CalculateMetrics error: %v", err)
	}
	want := map[string]float64{
		MetricCTR:               4200.0 / 250000.0 * 100,
		MetricConversionRate:    180.0 / 4200.0 * 100,
		MetricCostPerClick:      18500.0 / 4200.0,
		MetricCostPerConversion: 18500.0 / 180.0,
		MetricROI:               (27000.0 - 18500.0) / 18500.0 * 100,
	}
	want[MetricCTRVsTarget] = want[MetricCTR] - 2
	want[MetricROIVsTarget] = want[MetricROI] - 100
	for k, v := range want {
		if !approx(m[k], v) {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
}

func TestCalculateMetrics_NoTargets(t *testing.T) {
	rec := sampleRecord()
	delete(rec, "target_ctr")
	delete(rec, "target_roi")
	m, err := CalculateMetrics(rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m[MetricCTRVsTarget]; ok {
		t.Error("ctr_vs_target should be absent without target_ctr")
	}
	if _, ok := m[MetricROIVsTarget]; ok {
		t.Error("roi_vs_target should be absent without target_roi")
	}
}

func TestCalculateMetrics_Errors(t *testing.T) {
	missing := sampleRecord()
	delete(missing, "clicks")
	zero := sampleRecord()
	zero["impressions"] = 0
	text := sampleRecord()
	text["spend"] = "lots"

	for name, rec := range map[string]map[string]any{"missing": missing, "zero": zero, "text": text} {
		t.Run(name, func(t *testing.T) {
			if _, err := CalculateMetrics(rec); !errors.Is(err, ErrMetricInput) {
				t.Errorf("expected ErrMetricInput, got %v", err)
			}
		})
	}
}

func TestDetectPatterns(t *testing.T) {
	got := DetectPatterns(sampleRecord())
	want := []string{"CTR below 2%", "ROI below 100%", "Conversion rate below 5%"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectPatterns mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectPatterns_HighCost(t *testing.T) {
	rec := map[string]any{"spend": 600, "clicks": 100}
	got := DetectPatterns(rec)
	if diff := cmp.Diff([]string{"Cost per click above $5"}, got); diff != "" {
		t.Errorf("DetectPatterns mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectPatterns_SkipsMissingAndZero(t *testing.T) {
	rec := map[string]any{"impressions": 0, "clicks": 0}
	if got := DetectPatterns(rec); len(got) != 0 {
		t.Errorf("expected no patterns, got %v", got)
	}
}
