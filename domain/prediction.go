package domain

import "time"

// Stat identifies one predicted performance metric.
type Stat string

const (
	StatPassingYards   Stat = "passing_yards"
	StatRushingYards   Stat = "rushing_yards"
	StatReceivingYards Stat = "receiving_yards"
	StatTouchdowns     Stat = "touchdowns"
	StatInterceptions  Stat = "interceptions"
)

// Stats lists every predicted metric in a stable order.
var Stats = []Stat{
	StatPassingYards,
	StatRushingYards,
	StatReceivingYards,
	StatTouchdowns,
	StatInterceptions,
}

// StatLine is the prediction for a single metric.
type StatLine struct {
	PredictedValue   float64 `json:"predicted_value"`
	Confidence       float64 `json:"confidence"`
	ProbabilityOver  float64 `json:"probability_over"`
	ProbabilityUnder float64 `json:"probability_under"`
	StdDeviation     float64 `json:"std_deviation"`
}

// FeatureWeights exposes which model inputs drove a stat line, for the
// explainer to narrate.
type FeatureWeights struct {
	FeatureNames  []string  `json:"feature_names"`
	Contributions []float64 `json:"contributions"`
}

type Prediction struct {
	PlayerID    string                  `json:"player_id"`
	PlayerName  string                  `json:"player_name"`
	Position    string                  `json:"position"`
	Predictions map[Stat]*StatLine      `json:"predictions"`
	Factors     map[Stat]FeatureWeights `json:"factors"`
	Timestamp   time.Time               `json:"timestamp"`
}

// WhatIfScenario is a canned alternative-outcome narrative attached to an
// explanation.
type WhatIfScenario struct {
	Scenario      string   `json:"scenario"`
	Impact        string   `json:"impact"`
	Explanation   string   `json:"explanation"`
	AffectedStats []string `json:"affected_stats"`
}

type Explanation struct {
	PlayerID        string           `json:"player_id"`
	PlayerName      string           `json:"player_name"`
	OverallSummary  string           `json:"overall_summary"`
	Narratives      map[Stat]string  `json:"narrative_explanations"`
	ConfidenceNotes map[Stat]string  `json:"confidence_explanation"`
	WhatIfScenarios []WhatIfScenario `json:"what_if_scenarios"`
	Timestamp       time.Time        `json:"timestamp"`
}

// PlayerContext bundles what the explainer knows about one player when
// answering a question.
type PlayerContext struct {
	PlayerName  string
	Position    string
	Predictions map[Stat]*StatLine
	Explanation *Explanation
}
