package engagement

import "fmt"

// Scaler kinds supported by the bundle format
const (
	ScalerMinMax = "minmax"
	ScalerZScore = "zscore"
)

// Scaler rescales a model vector with parameters fixed at training time.
// Min-max maps each feature onto [0,1] using the training data extremes;
// z-score centers on the training mean and divides by the training
// standard deviation.
type Scaler struct {
	Kind string `json:"kind"`

	// Min-max parameters
	DataMin []float64 `json:"data_min,omitempty"`
	DataMax []float64 `json:"data_max,omitempty"`

	// Z-score parameters
	Mean []float64 `json:"mean,omitempty"`
	Std  []float64 `json:"std,omitempty"`
}

// Transform rescales the vector in a new slice, leaving the input untouched
func (s *Scaler) Transform(vec []float64) []float64 {
	out := make([]float64, len(vec))

	switch s.Kind {
	case ScalerMinMax:
		for i, v := range vec {
			span := s.DataMax[i] - s.DataMin[i]
			if span == 0 {
				out[i] = 0
				continue
			}
			out[i] = (v - s.DataMin[i]) / span
		}
	case ScalerZScore:
		for i, v := range vec {
			if s.Std[i] == 0 {
				out[i] = 0
				continue
			}
			out[i] = (v - s.Mean[i]) / s.Std[i]
		}
	default:
		copy(out, vec)
	}

	return out
}

func (s *Scaler) validate(featureCount int) error {
	switch s.Kind {
	case ScalerMinMax:
		if len(s.DataMin) != featureCount || len(s.DataMax) != featureCount {
			return fmt.Errorf("minmax scaler parameters do not match feature count %d", featureCount)
		}
	case ScalerZScore:
		if len(s.Mean) != featureCount || len(s.Std) != featureCount {
			return fmt.Errorf("zscore scaler parameters do not match feature count %d", featureCount)
		}
	default:
		return fmt.Errorf("unknown scaler kind %q", s.Kind)
	}
	return nil
}
