// Package explainer turns raw predictions into the narratives, confidence
// notes and what-if scenarios shipped to subscribers, and answers free-form
// questions about a player. Answers prefer the OpenAI backend when one is
// configured and degrade to pattern matching when it is not.
package explainer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"seetheplay/domain"
	"seetheplay/errors"
)

var statLabels = map[domain.Stat]string{
	domain.StatPassingYards:   "passing yards",
	domain.StatRushingYards:   "rushing yards",
	domain.StatReceivingYards: "receiving yards",
	domain.StatTouchdowns:     "touchdowns",
	domain.StatInterceptions:  "interceptions",
}

var featureLabels = map[string]string{
	"player_skill":     "player skill rating",
	"recent_form":      "recent performance form",
	"health_status":    "current health status",
	"offensive_rating": "team offensive strength",
	"team_pace":        "team pace of play",
	"team_chemistry":   "team chemistry",
	"weather_impact":   "weather conditions",
	"home_advantage":   "home field advantage",
	"opponent_defense": "opponent defensive strength",
	"game_importance":  "game importance level",
}

type Explainer struct {
	log *slog.Logger
	gpt *OpenAIClient
}

// New builds an explainer. gpt may be nil; questions then fall back to
// pattern-matched answers.
func New(log *slog.Logger, gpt *OpenAIClient) *Explainer {
	return &Explainer{log: log, gpt: gpt}
}

// Explain renders a prediction into its narrative form.
func (e *Explainer) Explain(prediction domain.Prediction) (domain.Explanation, error) {
	if len(prediction.Predictions) == 0 {
		return domain.Explanation{}, fmt.Errorf("nothing to explain for %s", prediction.PlayerID)
	}

	explanation := domain.Explanation{
		PlayerID:        prediction.PlayerID,
		PlayerName:      prediction.PlayerName,
		Narratives:      make(map[domain.Stat]string, len(prediction.Predictions)),
		ConfidenceNotes: make(map[domain.Stat]string, len(prediction.Predictions)),
		Timestamp:       time.Now(),
	}

	for stat, line := range prediction.Predictions {
		if line == nil {
			continue
		}
		explanation.Narratives[stat] = e.narrate(prediction, stat, *line)
		explanation.ConfidenceNotes[stat] = confidenceNote(line.Confidence)
	}
	explanation.OverallSummary = overallSummary(prediction)
	explanation.WhatIfScenarios = whatIfScenarios(prediction)
	return explanation, nil
}

func (e *Explainer) narrate(prediction domain.Prediction, stat domain.Stat, line domain.StatLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is projected to achieve %.1f %s with %.1f%% confidence. ",
		prediction.PlayerName, line.PredictedValue, statLabels[stat], line.Confidence*100)

	if positive, negative := topFactors(prediction.Factors[stat]); positive != "" || negative != "" {
		if positive != "" {
			fmt.Fprintf(&b, "The main driver is %s, which strongly favors higher performance. ", positive)
		}
		if negative != "" {
			fmt.Fprintf(&b, "However, %s presents some challenges that may limit output. ", negative)
		}
	}

	switch {
	case line.Confidence > 0.8:
		b.WriteString("This is a high-confidence prediction with strong supporting factors.")
	case line.Confidence > 0.7:
		b.WriteString("This is a moderate-confidence prediction with mixed signals.")
	default:
		b.WriteString("This is a lower-confidence prediction due to conflicting factors.")
	}
	return b.String()
}

// topFactors picks the strongest positive and negative feature pulls.
func topFactors(weights domain.FeatureWeights) (positive, negative string) {
	type factor struct {
		name  string
		value float64
	}
	if len(weights.FeatureNames) != len(weights.Contributions) {
		return "", ""
	}
	factors := make([]factor, 0, len(weights.FeatureNames))
	for i, name := range weights.FeatureNames {
		factors = append(factors, factor{name: name, value: weights.Contributions[i]})
	}
	sort.Slice(factors, func(i, j int) bool {
		return abs(factors[i].value) > abs(factors[j].value)
	})
	if len(factors) > 3 {
		factors = factors[:3]
	}
	for _, f := range factors {
		if f.value > 0 && positive == "" {
			positive = humanize(f.name)
		}
		if f.value < 0 && negative == "" {
			negative = humanize(f.name)
		}
	}
	return positive, negative
}

func overallSummary(prediction domain.Prediction) string {
	highConfidence := lo.CountBy(lo.Values(prediction.Predictions), func(line *domain.StatLine) bool {
		return line != nil && line.Confidence > 0.75
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) is expected to have a ", prediction.PlayerName, prediction.Position)
	switch {
	case highConfidence >= 3:
		b.WriteString("strong overall performance today. ")
	case highConfidence >= 2:
		b.WriteString("solid performance with some standout areas. ")
	default:
		b.WriteString("variable performance with uncertainty in key areas. ")
	}

	switch prediction.Position {
	case "QB":
		if line := prediction.Predictions[domain.StatPassingYards]; line != nil && line.PredictedValue > 250 {
			b.WriteString("Expect a high-volume passing game with good yardage potential. ")
		}
	case "RB", "FB":
		if line := prediction.Predictions[domain.StatRushingYards]; line != nil && line.PredictedValue > 100 {
			b.WriteString("Ground game should be productive with strong rushing output. ")
		}
	case "WR", "TE":
		if line := prediction.Predictions[domain.StatReceivingYards]; line != nil && line.PredictedValue > 80 {
			b.WriteString("Should see significant targets with good receiving production. ")
		}
	}
	return b.String()
}

func whatIfScenarios(prediction domain.Prediction) []domain.WhatIfScenario {
	allStats := lo.Map(domain.Stats, func(s domain.Stat, _ int) string { return string(s) })
	return []domain.WhatIfScenario{
		{
			Scenario:      "What if weather conditions worsen?",
			Impact:        "Passing game could decrease by 15-20%, rushing may increase slightly",
			Explanation:   "Poor weather typically reduces passing accuracy and increases reliance on ground game",
			AffectedStats: []string{string(domain.StatPassingYards), string(domain.StatReceivingYards)},
		},
		{
			Scenario:      "What if the opponent focuses on stopping the pass?",
			Impact:        fmt.Sprintf("%s might see 10-15%% fewer targets but higher completion rate", prediction.PlayerName),
			Explanation:   "Defensive focus on pass coverage often opens up underneath routes and running lanes",
			AffectedStats: []string{string(domain.StatReceivingYards), string(domain.StatRushingYards)},
		},
		{
			Scenario:      "What if this becomes a high-scoring game?",
			Impact:        "All offensive stats likely to increase by 20-30%",
			Explanation:   "High-scoring games increase total plays and opportunities for all players",
			AffectedStats: allStats,
		},
	}
}

func confidenceNote(confidence float64) string {
	switch {
	case confidence > 0.85:
		return "Very High - Strong consensus across all factors, minimal uncertainty"
	case confidence > 0.75:
		return "High - Most factors align, some minor conflicting signals"
	case confidence > 0.65:
		return "Moderate - Mixed signals from different factors, moderate uncertainty"
	default:
		return "Low - Conflicting factors create high uncertainty in prediction"
	}
}

// Answer replies to a free-form question about a player. The OpenAI backend
// is tried first when configured; any failure downgrades to the built-in
// pattern answers so the subscriber always gets a reply.
func (e *Explainer) Answer(ctx context.Context, question string, player domain.PlayerContext) (string, error) {
	if e.gpt != nil {
		answer, err := e.gpt.Ask(ctx, question, player)
		if err == nil {
			return answer, nil
		}
		e.log.Warn("OpenAI answer failed, using pattern fallback",
			"error", fmt.Errorf("%w: %v", errors.ErrExplainerFallback, err))
	}
	return e.answerWithPatterns(question, player), nil
}

func (e *Explainer) answerWithPatterns(question string, player domain.PlayerContext) string {
	q := strings.ToLower(question)
	name := player.PlayerName
	if name == "" {
		name = "Player"
	}

	switch {
	case strings.Contains(q, "why") && strings.Contains(q, "predict"):
		return fmt.Sprintf("The predictions for %s are based on player skill, recent form, team offensive strength, opponent matchup, and game context analyzed through the prediction model.", name)
	case strings.Contains(q, "confidence"):
		return confidenceAnswer(player.Predictions)
	case strings.Contains(q, "yards"):
		return yardsAnswer(name, player.Predictions)
	case strings.Contains(q, "touchdown"):
		return touchdownAnswer(name, player.Predictions)
	case strings.Contains(q, "risk") || strings.Contains(q, "concern"):
		return riskAnswer(name, player.Predictions)
	default:
		return fmt.Sprintf("I can help explain %s's predictions. Try asking about confidence levels, specific stats, or what factors influenced the predictions.", name)
	}
}

func confidenceAnswer(predictions map[domain.Stat]*domain.StatLine) string {
	if len(predictions) == 0 {
		return "No predictions are available yet to judge confidence."
	}
	total := 0.0
	count := 0
	for _, line := range predictions {
		if line != nil {
			total += line.Confidence
			count++
		}
	}
	if count == 0 {
		return "No predictions are available yet to judge confidence."
	}
	return fmt.Sprintf("Average confidence is %.1f%%. Higher confidence means stronger agreement across all prediction factors.", total/float64(count)*100)
}

func yardsAnswer(name string, predictions map[domain.Stat]*domain.StatLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s's yardage predictions: ", name)
	found := false
	for _, stat := range domain.Stats {
		if !strings.Contains(string(stat), "yards") {
			continue
		}
		if line := predictions[stat]; line != nil {
			fmt.Fprintf(&b, "%s: %.1f yards (%.1f%% confidence). ",
				statLabels[stat], line.PredictedValue, line.Confidence*100)
			found = true
		}
	}
	if !found {
		return fmt.Sprintf("No yardage predictions available for %s.", name)
	}
	return b.String()
}

func touchdownAnswer(name string, predictions map[domain.Stat]*domain.StatLine) string {
	line := predictions[domain.StatTouchdowns]
	if line == nil {
		return fmt.Sprintf("No touchdown prediction available for %s.", name)
	}
	likelihood := "low"
	if line.PredictedValue > 1.5 {
		likelihood = "high"
	} else if line.PredictedValue > 0.8 {
		likelihood = "moderate"
	}
	return fmt.Sprintf("%s has a %s likelihood of scoring, predicted: %.1f TDs (%.1f%% confidence).",
		name, likelihood, line.PredictedValue, line.Confidence*100)
}

func riskAnswer(name string, predictions map[domain.Stat]*domain.StatLine) string {
	var shaky []string
	for _, stat := range domain.Stats {
		if line := predictions[stat]; line != nil && line.Confidence < 0.7 {
			shaky = append(shaky, statLabels[stat])
		}
	}
	if len(shaky) > 0 {
		return fmt.Sprintf("Risk factors for %s: uncertainty in %s. These areas could vary significantly from predictions.",
			name, strings.Join(shaky, ", "))
	}
	return fmt.Sprintf("%s has low risk with consistent predictions across all metrics.", name)
}

func humanize(feature string) string {
	if label, ok := featureLabels[feature]; ok {
		return label
	}
	return strings.ReplaceAll(feature, "_", " ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
