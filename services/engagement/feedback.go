package engagement

import (
	"math"
	"sort"
	"strings"
)

// Severity grades for a feature's deviation from the population mean
const (
	SeverityNormal = "normal"
	SeverityMild   = "mild"
	SeveritySevere = "severe"
)

// Deviation thresholds are fixed absolute constants, not scaled per
// feature. The calibration question is tracked with the training side.
const (
	mildDeviation   = 0.5
	severeDeviation = 1.5
)

// feedbackTemplates holds the per-class message pools. {cause1} and
// {cause2} are replaced with the class's two most influential features.
var feedbackTemplates = map[int][]string{
	0: {
		"Your focus seems low. Consider improving {cause1} and monitoring your {cause2}.",
		"Low engagement was detected. Try managing your {cause1} and {cause2}.",
		"You can increase focus by enhancing your {cause1} and stabilizing {cause2}.",
	},
	1: {
		"Moderate focus detected. Improving your {cause1} may boost engagement.",
		"You're doing okay. For better focus, monitor {cause1} and {cause2}.",
		"To reach high engagement, fine-tune your {cause1} and control {cause2}.",
	},
	2: {
		"Excellent engagement! Keep maintaining your {cause1} and {cause2}.",
		"Great job! Your {cause1} levels indicate strong focus.",
		"You're highly engaged. Keep it up by balancing your {cause2}.",
	},
}

// synthesizeFeedback picks the class's top-2 features by importance and
// interpolates them into a randomly selected template from the class pool.
func (p *Pipeline) synthesizeFeedback(level int, table []FeatureWeight) (string, []string) {
	ranked := make([]FeatureWeight, len(table))
	copy(ranked, table)

	// Stable sort keeps table order on equal weights
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})

	top := []string{ranked[0].Feature}
	if len(ranked) > 1 {
		top = append(top, ranked[1].Feature)
	} else {
		top = append(top, ranked[0].Feature)
	}

	pool := feedbackTemplates[level]
	if len(pool) == 0 {
		return "", top
	}

	template := pool[p.pick(len(pool))]
	feedback := strings.ReplaceAll(template, "{cause1}", top[0])
	feedback = strings.ReplaceAll(feedback, "{cause2}", top[1])

	return feedback, top
}

// gradeSeverities grades every numeric feature's absolute deviation from
// its population mean.
func (p *Pipeline) gradeSeverities(values map[string]float64) map[string]string {
	severities := make(map[string]string, len(p.bundle.NumericFeatures))
	for _, feat := range p.bundle.NumericFeatures {
		severities[feat] = gradeSeverity(values[feat], p.bundle.Means[feat])
	}
	return severities
}

func gradeSeverity(value, mean float64) string {
	deviation := math.Abs(value - mean)
	switch {
	case deviation < mildDeviation:
		return SeverityNormal
	case deviation < severeDeviation:
		return SeverityMild
	default:
		return SeveritySevere
	}
}
