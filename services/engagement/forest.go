package engagement

// TreeNode is one node of a serialized decision tree. Internal nodes route
// on vec[Feature] <= Threshold; leaves carry the predicted class.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Class     int     `json:"class"`
}

// Tree is a single decision tree with nodes stored in a flat array,
// rooted at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree for a scaled feature vector
func (t *Tree) Predict(vec []float64) int {
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.Leaf {
			return node.Class
		}
		if vec[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// Forest is the serialized random-forest classifier
type Forest struct {
	NumClasses int    `json:"num_classes"`
	Trees      []Tree `json:"trees"`
}

// Predict returns the majority-vote class across all trees. Ties resolve
// to the lowest class id, matching the training-side argmax behavior.
func (f *Forest) Predict(vec []float64) int {
	votes := make([]int, f.NumClasses)
	for i := range f.Trees {
		class := f.Trees[i].Predict(vec)
		if class >= 0 && class < f.NumClasses {
			votes[class]++
		}
	}

	best := 0
	for class, count := range votes {
		if count > votes[best] {
			best = class
		}
	}
	return best
}
