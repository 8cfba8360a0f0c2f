package engagement

import (
	"encoding/json"
	"fmt"
	"os"
)

// FeatureRange is the plausibility interval enforced for a supplied value
type FeatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FeatureWeight is a per-feature importance score within one class's table.
// Table order is preserved so that ties resolve deterministically.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Bundle is the classifier artifact produced by offline training. It is
// loaded once at startup and treated as immutable afterwards, so it is safe
// for unlimited concurrent read-only use.
type Bundle struct {
	// Classes holds the human-readable names for the ordinal levels,
	// indexed by class id (0=Low, 1=Moderate, 2=High).
	Classes []string `json:"classes"`

	// NumericFeatures is the fixed ordered set of required numeric inputs.
	NumericFeatures []string `json:"numeric_features"`

	// CategoricalFeatures is the ordered set of required categorical
	// inputs (empty in the 3-feature variant). Their encoded values are
	// appended after the numeric features in the model vector.
	CategoricalFeatures []string `json:"categorical_features,omitempty"`

	// Ranges maps a numeric feature to its plausibility interval.
	// Features without an entry are not range-checked.
	Ranges map[string]FeatureRange `json:"ranges,omitempty"`

	// Means holds the per-feature population means computed at training
	// time, used both for imputation and severity grading.
	Means map[string]float64 `json:"column_means"`

	// Vocabularies maps a categorical feature to its learned
	// value-to-integer encoding.
	Vocabularies map[string]map[string]int `json:"vocabularies,omitempty"`

	Scaler Scaler `json:"scaler"`
	Forest Forest `json:"forest"`

	// Importance holds the per-class SHAP importance tables, keyed by
	// class id as a string (JSON object keys).
	Importance map[string][]FeatureWeight `json:"shap_importance"`
}

// LoadBundle reads and validates a serialized classifier bundle
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle %s: %w", path, err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode model bundle: %w", err)
	}

	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model bundle: %w", err)
	}

	return &bundle, nil
}

// FeatureCount returns the total model vector width
func (b *Bundle) FeatureCount() int {
	return len(b.NumericFeatures) + len(b.CategoricalFeatures)
}

// ImportanceForClass returns the importance table for a class id
func (b *Bundle) ImportanceForClass(level int) []FeatureWeight {
	return b.Importance[fmt.Sprintf("%d", level)]
}

// Validate checks internal consistency of the bundle
func (b *Bundle) Validate() error {
	if len(b.Classes) == 0 {
		return fmt.Errorf("no classes defined")
	}
	if len(b.NumericFeatures) == 0 {
		return fmt.Errorf("no numeric features defined")
	}

	for _, feat := range b.NumericFeatures {
		if _, ok := b.Means[feat]; !ok {
			return fmt.Errorf("missing population mean for feature %q", feat)
		}
	}

	for _, feat := range b.CategoricalFeatures {
		vocab, ok := b.Vocabularies[feat]
		if !ok || len(vocab) == 0 {
			return fmt.Errorf("missing vocabulary for categorical feature %q", feat)
		}
	}

	if err := b.Scaler.validate(b.FeatureCount()); err != nil {
		return err
	}

	if len(b.Forest.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	if b.Forest.NumClasses != len(b.Classes) {
		return fmt.Errorf("forest reports %d classes, bundle defines %d", b.Forest.NumClasses, len(b.Classes))
	}

	return nil
}
