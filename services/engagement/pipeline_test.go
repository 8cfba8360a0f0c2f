package engagement

import (
	"errors"
	"strings"
	"testing"
)

func leaf(class int) TreeNode {
	return TreeNode{Feature: -1, Left: -1, Right: -1, Leaf: true, Class: class}
}

func split(feature int, threshold float64, left, right int) TreeNode {
	return TreeNode{Feature: feature, Threshold: threshold, Left: left, Right: right}
}

// testBundle mirrors the shipped three-feature artifact: min-max scaling
// over HeartRate/SkinConductance/EEG and a three-tree forest.
func testBundle() *Bundle {
	return &Bundle{
		Classes:         []string{"Low", "Moderate", "High"},
		NumericFeatures: []string{"HeartRate", "SkinConductance", "EEG"},
		Ranges: map[string]FeatureRange{
			"HeartRate":       {Min: 20, Max: 100},
			"SkinConductance": {Min: 0.01, Max: 20},
			"EEG":             {Min: 1, Max: 20},
		},
		Means: map[string]float64{
			"HeartRate":       54.2,
			"SkinConductance": 4.87,
			"EEG":             9.8,
		},
		Scaler: Scaler{
			Kind:    ScalerMinMax,
			DataMin: []float64{20, 0.01, 1},
			DataMax: []float64{100, 20, 20},
		},
		Forest: Forest{
			NumClasses: 3,
			Trees: []Tree{
				{Nodes: []TreeNode{
					split(2, 0.15, 1, 2),
					leaf(0),
					split(2, 0.55, 3, 4),
					leaf(1),
					leaf(2),
				}},
				{Nodes: []TreeNode{
					split(0, 0.25, 1, 2),
					leaf(0),
					split(2, 0.5, 3, 4),
					leaf(1),
					leaf(2),
				}},
				{Nodes: []TreeNode{
					split(2, 0.12, 1, 2),
					leaf(0),
					split(2, 0.55, 3, 4),
					leaf(1),
					split(0, 0.4, 5, 6),
					leaf(1),
					leaf(2),
				}},
			},
		},
		Importance: map[string][]FeatureWeight{
			"0": {
				{Feature: "SkinConductance", Weight: 0.41},
				{Feature: "HeartRate", Weight: 0.34},
				{Feature: "EEG", Weight: 0.25},
			},
			"1": {
				{Feature: "EEG", Weight: 0.39},
				{Feature: "HeartRate", Weight: 0.33},
				{Feature: "SkinConductance", Weight: 0.28},
			},
			"2": {
				{Feature: "EEG", Weight: 0.44},
				{Feature: "SkinConductance", Weight: 0.31},
				{Feature: "HeartRate", Weight: 0.25},
			},
		},
	}
}

func testPipeline() *Pipeline {
	p := NewPipeline(testBundle())
	p.pick = func(n int) int { return 0 }
	return p
}

func TestPredictLevels(t *testing.T) {
	p := testPipeline()

	cases := []struct {
		name  string
		input map[string]interface{}
		level int
		label string
	}{
		{
			name:  "high engagement",
			input: map[string]interface{}{"HeartRate": 62.40, "SkinConductance": 0.71, "EEG": 13.60},
			level: 2,
			label: "High",
		},
		{
			name:  "moderate engagement",
			input: map[string]interface{}{"HeartRate": 48.0, "SkinConductance": 0.35, "EEG": 6.2},
			level: 1,
			label: "Moderate",
		},
		{
			name:  "low engagement",
			input: map[string]interface{}{"HeartRate": 33.5, "SkinConductance": 0.12, "EEG": 2.8},
			level: 0,
			label: "Low",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := p.Predict(tc.input)
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			if result.Level != tc.level {
				t.Errorf("expected level %d, got %d", tc.level, result.Level)
			}
			if result.Label != tc.label {
				t.Errorf("expected label %q, got %q", tc.label, result.Label)
			}
		})
	}
}

func TestPredictDeterministic(t *testing.T) {
	p := testPipeline()
	input := map[string]interface{}{"HeartRate": 62.40, "SkinConductance": 0.71, "EEG": 13.60}

	first, err := p.Predict(input)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := p.Predict(input)
		if err != nil {
			t.Fatalf("Predict failed on run %d: %v", i, err)
		}
		if again.Level != first.Level {
			t.Fatalf("level changed between runs: %d vs %d", first.Level, again.Level)
		}
		for feat, value := range first.Features {
			if again.Features[feat] != value {
				t.Fatalf("feature %s changed between runs: %g vs %g", feat, value, again.Features[feat])
			}
		}
	}
}

func TestPredictImputesZeroAndNull(t *testing.T) {
	p := testPipeline()

	// Zero and null both count as unset and receive the population mean;
	// neither triggers a range check even though 0 is outside every range.
	result, err := p.Predict(map[string]interface{}{
		"HeartRate":       0.0,
		"SkinConductance": nil,
		"EEG":             13.6,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Features["HeartRate"] != 54.2 {
		t.Errorf("expected HeartRate imputed to 54.2, got %g", result.Features["HeartRate"])
	}
	if result.Features["SkinConductance"] != 4.87 {
		t.Errorf("expected SkinConductance imputed to 4.87, got %g", result.Features["SkinConductance"])
	}
	if result.Features["EEG"] != 13.6 {
		t.Errorf("expected EEG passed through as 13.6, got %g", result.Features["EEG"])
	}
}

func TestPredictMissingField(t *testing.T) {
	p := testPipeline()

	_, err := p.Predict(map[string]interface{}{
		"HeartRate":       62.4,
		"SkinConductance": 0.71,
	})

	var missingErr *MissingFieldError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missingErr.Field != "EEG" {
		t.Errorf("expected missing field EEG, got %q", missingErr.Field)
	}
	if got := missingErr.Error(); got != "Missing column: EEG" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestPredictRangeViolationsListEveryFailure(t *testing.T) {
	p := testPipeline()

	_, err := p.Predict(map[string]interface{}{
		"HeartRate":       150.0,
		"SkinConductance": 0.71,
		"EEG":             0.5,
	})

	var rangeErr *RangeViolationError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeViolationError, got %v", err)
	}
	if len(rangeErr.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(rangeErr.Violations))
	}

	msg := rangeErr.Error()
	want := "HeartRate must be between 20 and 100 | EEG must be between 1 and 20"
	if msg != want {
		t.Errorf("unexpected message:\n got: %q\nwant: %q", msg, want)
	}
}

func TestPredictUnsupportedInputType(t *testing.T) {
	p := testPipeline()

	_, err := p.Predict(map[string]interface{}{
		"HeartRate":       "fast",
		"SkinConductance": 0.71,
		"EEG":             13.6,
	})

	var inputErr *UnsupportedInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected UnsupportedInputError, got %v", err)
	}
	if inputErr.Field != "HeartRate" {
		t.Errorf("expected field HeartRate, got %q", inputErr.Field)
	}
}

func TestFeedbackUsesTopTwoFeatures(t *testing.T) {
	p := testPipeline()

	result, err := p.Predict(map[string]interface{}{
		"HeartRate":       62.40,
		"SkinConductance": 0.71,
		"EEG":             13.60,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if len(result.TopFeatures) != 2 {
		t.Fatalf("expected 2 top features, got %v", result.TopFeatures)
	}
	if result.TopFeatures[0] != "EEG" || result.TopFeatures[1] != "SkinConductance" {
		t.Errorf("unexpected top features: %v", result.TopFeatures)
	}

	// pick is pinned to the first template of the class pool
	want := "Excellent engagement! Keep maintaining your EEG and SkinConductance."
	if result.Feedback != want {
		t.Errorf("unexpected feedback:\n got: %q\nwant: %q", result.Feedback, want)
	}

	if strings.Contains(result.Feedback, "{cause1}") || strings.Contains(result.Feedback, "{cause2}") {
		t.Error("feedback still contains unexpanded placeholders")
	}
}

func TestFeedbackSkippedWithoutImportanceTables(t *testing.T) {
	bundle := testBundle()
	bundle.Importance = nil
	p := NewPipeline(bundle)

	result, err := p.Predict(map[string]interface{}{
		"HeartRate":       62.40,
		"SkinConductance": 0.71,
		"EEG":             13.60,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Feedback != "" || len(result.TopFeatures) != 0 || len(result.Severities) != 0 {
		t.Errorf("expected no feedback fields, got %+v", result)
	}
}

func TestGradeSeverity(t *testing.T) {
	cases := []struct {
		value, mean float64
		want        string
	}{
		{54.5, 54.2, SeverityNormal},
		{54.2, 54.2, SeverityNormal},
		{55.0, 54.2, SeverityMild},
		{53.0, 54.2, SeverityMild},
		{60.0, 54.2, SeveritySevere},
		{40.0, 54.2, SeveritySevere},
	}

	for _, tc := range cases {
		if got := gradeSeverity(tc.value, tc.mean); got != tc.want {
			t.Errorf("gradeSeverity(%g, %g) = %q, want %q", tc.value, tc.mean, got, tc.want)
		}
	}
}

func TestPredictSeveritiesCoverAllNumericFeatures(t *testing.T) {
	p := testPipeline()

	result, err := p.Predict(map[string]interface{}{
		"HeartRate":       62.40,
		"SkinConductance": 0.71,
		"EEG":             13.60,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	for _, feat := range []string{"HeartRate", "SkinConductance", "EEG"} {
		if _, ok := result.Severities[feat]; !ok {
			t.Errorf("missing severity for %s", feat)
		}
	}
	// All three readings sit far from their population means
	for feat, severity := range result.Severities {
		if severity != SeveritySevere {
			t.Errorf("expected severe deviation for %s, got %q", feat, severity)
		}
	}
}

// categoricalBundle is a minimal bundle with one numeric and one
// categorical feature, used to exercise the vocabulary path.
func categoricalBundle() *Bundle {
	return &Bundle{
		Classes:             []string{"Low", "Moderate", "High"},
		NumericFeatures:     []string{"HeartRate"},
		CategoricalFeatures: []string{"Activity"},
		Means:               map[string]float64{"HeartRate": 54.2},
		Vocabularies: map[string]map[string]int{
			"Activity": {"reading": 0, "video": 1},
		},
		Scaler: Scaler{Kind: ScalerMinMax, DataMin: []float64{20, 0}, DataMax: []float64{100, 1}},
		Forest: Forest{
			NumClasses: 3,
			Trees:      []Tree{{Nodes: []TreeNode{leaf(1)}}},
		},
	}
}

func TestPredictUnknownCategory(t *testing.T) {
	p := NewPipeline(categoricalBundle())

	_, err := p.Predict(map[string]interface{}{
		"HeartRate": 62.4,
		"Activity":  "sleeping",
	})

	var categoryErr *UnknownCategoryError
	if !errors.As(err, &categoryErr) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
	if categoryErr.Feature != "Activity" || categoryErr.Value != "sleeping" {
		t.Errorf("unexpected error contents: %+v", categoryErr)
	}
}

func TestPredictCategoricalRequiresString(t *testing.T) {
	p := NewPipeline(categoricalBundle())

	_, err := p.Predict(map[string]interface{}{
		"HeartRate": 62.4,
		"Activity":  3.0,
	})

	var inputErr *UnsupportedInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected UnsupportedInputError, got %v", err)
	}
}

func TestPredictCategoricalEncodes(t *testing.T) {
	p := NewPipeline(categoricalBundle())

	result, err := p.Predict(map[string]interface{}{
		"HeartRate": 62.4,
		"Activity":  "video",
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if result.Categorical["Activity"] != "video" {
		t.Errorf("expected categorical echo, got %v", result.Categorical)
	}
}

func TestRequiredFeaturesOrder(t *testing.T) {
	p := NewPipeline(categoricalBundle())

	got := p.RequiredFeatures()
	want := []string{"HeartRate", "Activity"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
