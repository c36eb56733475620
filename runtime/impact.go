package runtime

import (
	"seetheplay/domain"
	"seetheplay/domain/event"
)

const (
	minConfidence = 0.30
	maxConfidence = 0.95
)

// ApplyImpact bends a freshly computed prediction in place to reflect the
// event that just happened: targeted stat lines get their multiplier, the
// confidence shifts by the kind's delta and stays clamped.
func ApplyImpact(prediction *domain.Prediction, kind event.Kind) {
	impact := event.ImpactFor(kind)

	for stat, line := range prediction.Predictions {
		if line == nil {
			continue
		}
		if impact.AllStats != 0 {
			line.PredictedValue *= impact.AllStats
		}
		if multiplier, ok := impact.StatMultipliers[string(stat)]; ok {
			line.PredictedValue *= multiplier
		}
		line.Confidence = clamp(line.Confidence+impact.ConfidenceDelta, minConfidence, maxConfidence)
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
