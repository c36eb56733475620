// Package event defines the immutable play-by-play events a simulated game
// is made of, plus the weight and impact tables that drive their generation.
package event

import "fmt"

type Kind string

const (
	PassCompletion Kind = "pass_completion"
	Rush           Kind = "rush_attempt"
	Reception      Kind = "reception"
	Touchdown      Kind = "touchdown"
	FieldGoal      Kind = "field_goal"
	Interception   Kind = "interception"
	Fumble         Kind = "fumble"
	Sack           Kind = "sack"
	Timeout        Kind = "timeout"
	Penalty        Kind = "penalty"
)

// Weights is the categorical distribution events are drawn from.
// The exact values are tuning, not contract: scoring plays stay rare,
// routine offensive plays stay common.
var Weights = map[Kind]int{
	PassCompletion: 25,
	Rush:           20,
	Reception:      18,
	Touchdown:      8,
	FieldGoal:      5,
	Interception:   3,
	Fumble:         2,
	Sack:           4,
	Timeout:        15,
	Penalty:        10,
}

// Kinds lists every kind in a stable draw order.
var Kinds = []Kind{
	PassCompletion, Rush, Reception, Touchdown, FieldGoal,
	Interception, Fumble, Sack, Timeout, Penalty,
}

// GameEvent is generated once per epoch and never mutated afterwards.
// Quarter is the quarter the event was generated for; it is display
// metadata only and never drives the authoritative game clock.
type GameEvent struct {
	ID            string `json:"id"`
	Kind          Kind   `json:"type"`
	Quarter       int    `json:"quarter"`
	ActorPlayerID string `json:"player_id"`
	ActorName     string `json:"player_name"`
	Description   string `json:"description"`
	Yards         int    `json:"yards"`
	IsTouchdown   bool   `json:"is_touchdown"`
	IsTurnover    bool   `json:"is_turnover"`
}

// Points returns what the event puts on the scoreboard.
func (e GameEvent) Points() int {
	switch e.Kind {
	case Touchdown:
		return 7 // TD + extra point
	case FieldGoal:
		return 3
	default:
		return 0
	}
}

// Impact describes how an event kind bends subsequent predictions.
// Multipliers apply to a stat's predicted value; the confidence delta is
// added (positive or negative) and clamped by the caller.
type Impact struct {
	StatMultipliers map[string]float64
	AllStats        float64
	ConfidenceDelta float64
}

var impacts = map[Kind]Impact{
	PassCompletion: {StatMultipliers: map[string]float64{"passing_yards": 1.05}, ConfidenceDelta: 0.02},
	Rush:           {StatMultipliers: map[string]float64{"rushing_yards": 1.03}, ConfidenceDelta: 0.01},
	Reception:      {StatMultipliers: map[string]float64{"receiving_yards": 1.04}, ConfidenceDelta: 0.02},
	Touchdown:      {StatMultipliers: map[string]float64{"touchdowns": 1.2}, ConfidenceDelta: 0.05},
	FieldGoal:      {ConfidenceDelta: 0.01},
	Interception:   {StatMultipliers: map[string]float64{"interceptions": 1.1, "passing_yards": 0.95}, ConfidenceDelta: -0.03},
	Fumble:         {AllStats: 0.98, ConfidenceDelta: -0.02},
	Sack:           {StatMultipliers: map[string]float64{"passing_yards": 0.97}, ConfidenceDelta: -0.01},
	Timeout:        {ConfidenceDelta: 0.005},
	Penalty:        {AllStats: 0.99, ConfidenceDelta: -0.01},
}

// ImpactFor returns the prediction impact of an event kind; unknown kinds
// have none.
func ImpactFor(kind Kind) Impact {
	return impacts[kind]
}

// ImpactAnalysis is the one-line narrative attached to a live update.
func (e GameEvent) ImpactAnalysis() string {
	switch e.Kind {
	case Touchdown:
		return fmt.Sprintf("%s's touchdown increases their likelihood of continued scoring success this game.", e.ActorName)
	case Interception:
		return "The interception may indicate defensive pressure, potentially limiting passing opportunities."
	case PassCompletion:
		return fmt.Sprintf("Successful completion shows %s is finding rhythm in the passing game.", e.ActorName)
	case Rush:
		return fmt.Sprintf("Ground game involvement suggests %s will continue to see carries.", e.ActorName)
	default:
		return fmt.Sprintf("This %s may influence %s's remaining opportunities in the game.", e.Kind, e.ActorName)
	}
}
