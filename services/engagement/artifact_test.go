package engagement

import (
	"testing"
)

func TestLoadBundleShippedArtifact(t *testing.T) {
	bundle, err := LoadBundle("../../artifacts/model_bundle.json")
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}

	if got := bundle.FeatureCount(); got != 3 {
		t.Errorf("expected 3 features, got %d", got)
	}
	if len(bundle.Classes) != 3 {
		t.Errorf("expected 3 classes, got %v", bundle.Classes)
	}

	// The shipped artifact must classify the canonical example as High
	p := NewPipeline(bundle)
	result, err := p.Predict(map[string]interface{}{
		"HeartRate":       62.40,
		"SkinConductance": 0.71,
		"EEG":             13.60,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if result.Label != "High" {
		t.Errorf("expected High, got %q (level %d)", result.Label, result.Level)
	}
}

func TestLoadBundleMissingFile(t *testing.T) {
	if _, err := LoadBundle("does-not-exist.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBundleValidate(t *testing.T) {
	valid := testBundle()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid bundle rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Bundle)
	}{
		{"no classes", func(b *Bundle) { b.Classes = nil }},
		{"no features", func(b *Bundle) { b.NumericFeatures = nil }},
		{"missing mean", func(b *Bundle) { delete(b.Means, "EEG") }},
		{"scaler mismatch", func(b *Bundle) { b.Scaler.DataMin = []float64{0} }},
		{"empty forest", func(b *Bundle) { b.Forest.Trees = nil }},
		{"class count mismatch", func(b *Bundle) { b.Forest.NumClasses = 2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bundle := testBundle()
			tc.mutate(bundle)
			if err := bundle.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBundleValidateMissingVocabulary(t *testing.T) {
	bundle := categoricalBundle()
	if err := bundle.Validate(); err != nil {
		t.Fatalf("valid bundle rejected: %v", err)
	}

	bundle.Vocabularies = nil
	if err := bundle.Validate(); err == nil {
		t.Error("expected validation error for missing vocabulary")
	}
}
