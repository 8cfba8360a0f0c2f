package engagement

import (
	"math/rand/v2"
)

// Result is the synchronous output of one inference
type Result struct {
	Level int    `json:"engagement_level"`
	Label string `json:"engagement_label"`

	// Features holds the numeric values actually fed to the model,
	// after imputation.
	Features map[string]float64 `json:"features"`

	// Categorical holds the raw categorical values, when the bundle
	// defines any.
	Categorical map[string]string `json:"categorical,omitempty"`

	// Feedback fields are only populated when the bundle carries
	// importance tables.
	Feedback    string            `json:"feedback,omitempty"`
	TopFeatures []string          `json:"top_features,omitempty"`
	Severities  map[string]string `json:"severities,omitempty"`
}

// Pipeline validates, imputes, scales and classifies feature sets against
// an immutable bundle. It is stateless per request and safe for concurrent
// use.
type Pipeline struct {
	bundle *Bundle

	// pick selects a feedback template index; swapped in tests
	pick func(n int) int
}

// NewPipeline creates a pipeline over a loaded bundle
func NewPipeline(bundle *Bundle) *Pipeline {
	return &Pipeline{
		bundle: bundle,
		pick:   rand.IntN,
	}
}

// Bundle returns the underlying classifier artifact
func (p *Pipeline) Bundle() *Bundle {
	return p.bundle
}

// RequiredFeatures returns the fixed ordered set of required input names
func (p *Pipeline) RequiredFeatures() []string {
	required := make([]string, 0, p.bundle.FeatureCount())
	required = append(required, p.bundle.NumericFeatures...)
	required = append(required, p.bundle.CategoricalFeatures...)
	return required
}

// Predict runs the full pipeline for a single structured record:
// validation, imputation, categorical encoding, scaling, inference and
// feedback synthesis. The input maps feature names to their JSON-decoded
// values; a missing key is a MissingFieldError, a present-but-null or
// exactly-zero numeric value is treated as unset and imputed with the
// population mean. The zero-means-unset rule conflates a genuine zero
// reading with a missing one; that ambiguity comes from the training side
// and is preserved here.
func (p *Pipeline) Predict(input map[string]interface{}) (*Result, error) {
	values, err := p.resolveNumeric(input)
	if err != nil {
		return nil, err
	}

	categorical, encoded, err := p.resolveCategorical(input)
	if err != nil {
		return nil, err
	}

	vec := make([]float64, 0, p.bundle.FeatureCount())
	for _, feat := range p.bundle.NumericFeatures {
		vec = append(vec, values[feat])
	}
	vec = append(vec, encoded...)

	scaled := p.bundle.Scaler.Transform(vec)
	level := p.bundle.Forest.Predict(scaled)

	result := &Result{
		Level:       level,
		Label:       p.bundle.Classes[level],
		Features:    values,
		Categorical: categorical,
	}

	if table := p.bundle.ImportanceForClass(level); len(table) > 0 {
		result.Feedback, result.TopFeatures = p.synthesizeFeedback(level, table)
		result.Severities = p.gradeSeverities(values)
	}

	return result, nil
}

// resolveNumeric checks presence and ranges for every required numeric
// feature and returns the final values with unset entries imputed.
func (p *Pipeline) resolveNumeric(input map[string]interface{}) (map[string]float64, error) {
	values := make(map[string]float64, len(p.bundle.NumericFeatures))
	var violations []RangeViolation

	for _, feat := range p.bundle.NumericFeatures {
		raw, ok := input[feat]
		if !ok {
			return nil, &MissingFieldError{Field: feat}
		}

		value, set, err := numericValue(feat, raw)
		if err != nil {
			return nil, err
		}

		if !set {
			values[feat] = p.bundle.Means[feat]
			continue
		}

		if r, checked := p.bundle.Ranges[feat]; checked {
			if value < r.Min || value > r.Max {
				violations = append(violations, RangeViolation{
					Feature: feat,
					Value:   value,
					Min:     r.Min,
					Max:     r.Max,
				})
				continue
			}
		}

		values[feat] = value
	}

	if len(violations) > 0 {
		return nil, &RangeViolationError{Violations: violations}
	}

	return values, nil
}

// resolveCategorical encodes categorical features through the learned
// vocabularies. Out-of-vocabulary values are a hard error, never imputed.
func (p *Pipeline) resolveCategorical(input map[string]interface{}) (map[string]string, []float64, error) {
	if len(p.bundle.CategoricalFeatures) == 0 {
		return nil, nil, nil
	}

	categorical := make(map[string]string, len(p.bundle.CategoricalFeatures))
	encoded := make([]float64, 0, len(p.bundle.CategoricalFeatures))

	for _, feat := range p.bundle.CategoricalFeatures {
		raw, ok := input[feat]
		if !ok || raw == nil {
			return nil, nil, &MissingFieldError{Field: feat}
		}

		str, ok := raw.(string)
		if !ok {
			return nil, nil, &UnsupportedInputError{Field: feat, Reason: "expected a string"}
		}

		code, known := p.bundle.Vocabularies[feat][str]
		if !known {
			return nil, nil, &UnknownCategoryError{Feature: feat, Value: str}
		}

		categorical[feat] = str
		encoded = append(encoded, float64(code))
	}

	return categorical, encoded, nil
}

// numericValue decodes one JSON value into (value, set). A nil or
// exactly-zero value counts as unset.
func numericValue(field string, raw interface{}) (float64, bool, error) {
	switch v := raw.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, v != 0, nil
	case float32:
		return float64(v), v != 0, nil
	case int:
		return float64(v), v != 0, nil
	case int64:
		return float64(v), v != 0, nil
	default:
		return 0, false, &UnsupportedInputError{Field: field, Reason: "expected a number"}
	}
}
