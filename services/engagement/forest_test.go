package engagement

import "testing"

func TestForestMajorityVote(t *testing.T) {
	forest := Forest{
		NumClasses: 3,
		Trees: []Tree{
			{Nodes: []TreeNode{leaf(2)}},
			{Nodes: []TreeNode{leaf(2)}},
			{Nodes: []TreeNode{leaf(0)}},
		},
	}

	if got := forest.Predict([]float64{0, 0, 0}); got != 2 {
		t.Errorf("expected majority class 2, got %d", got)
	}
}

func TestForestTieResolvesToLowestClass(t *testing.T) {
	forest := Forest{
		NumClasses: 3,
		Trees: []Tree{
			{Nodes: []TreeNode{leaf(2)}},
			{Nodes: []TreeNode{leaf(1)}},
		},
	}

	if got := forest.Predict([]float64{0}); got != 1 {
		t.Errorf("expected tie to resolve to class 1, got %d", got)
	}
}

func TestTreeRouting(t *testing.T) {
	tree := Tree{Nodes: []TreeNode{
		split(0, 0.5, 1, 2),
		leaf(0),
		leaf(1),
	}}

	// A value exactly at the threshold routes left
	if got := tree.Predict([]float64{0.5}); got != 0 {
		t.Errorf("expected boundary value to route left, got class %d", got)
	}
	if got := tree.Predict([]float64{0.51}); got != 1 {
		t.Errorf("expected class 1, got %d", got)
	}
}

func TestScalerMinMax(t *testing.T) {
	s := Scaler{
		Kind:    ScalerMinMax,
		DataMin: []float64{20, 0},
		DataMax: []float64{100, 0}, // zero span on the second feature
	}

	out := s.Transform([]float64{60, 5})
	if out[0] != 0.5 {
		t.Errorf("expected 0.5, got %g", out[0])
	}
	if out[1] != 0 {
		t.Errorf("expected zero-span feature to map to 0, got %g", out[1])
	}
}

func TestScalerZScore(t *testing.T) {
	s := Scaler{
		Kind: ScalerZScore,
		Mean: []float64{50, 10},
		Std:  []float64{10, 0}, // zero std on the second feature
	}

	out := s.Transform([]float64{60, 12})
	if out[0] != 1.0 {
		t.Errorf("expected 1.0, got %g", out[0])
	}
	if out[1] != 0 {
		t.Errorf("expected zero-std feature to map to 0, got %g", out[1])
	}
}

func TestScalerDoesNotMutateInput(t *testing.T) {
	s := Scaler{Kind: ScalerMinMax, DataMin: []float64{0}, DataMax: []float64{10}}

	in := []float64{5}
	s.Transform(in)
	if in[0] != 5 {
		t.Errorf("input was mutated to %g", in[0])
	}
}
