// Package message defines the wire payloads exchanged with subscribers.
// Every outbound message is a tagged variant: one struct per "type" value,
// so each case's required fields are enforced by the compiler instead of an
// open-ended map.
package message

import (
	"encoding/json"
	"time"

	"seetheplay/domain"
	"seetheplay/domain/event"
)

type Outbound interface {
	MessageType() string
}

const (
	TypeGameInitialized = "game_initialized"
	TypeLiveUpdate      = "live_update"
	TypeTick            = "tick"
	TypeScenarioUpdate  = "scenario_update"
	TypeCedarAnswer     = "cedar_answer"
	TypeChatGPTAnswer   = "chatgpt_answer"
)

// PredictionBundle pairs a prediction with its narrative explanation.
// The explanation is omitted when the explainer collaborator failed.
type PredictionBundle struct {
	Prediction  domain.Prediction   `json:"prediction"`
	Explanation *domain.Explanation `json:"explanation,omitempty"`
}

type GameInitialized struct {
	Type               string             `json:"type"`
	Timestamp          time.Time          `json:"timestamp"`
	GameState          domain.Snapshot    `json:"game_state"`
	InitialPredictions []PredictionBundle `json:"initial_predictions"`
	Message            string             `json:"message"`
}

func NewGameInitialized(state domain.Snapshot, predictions []PredictionBundle, text string) GameInitialized {
	return GameInitialized{
		Type:               TypeGameInitialized,
		Timestamp:          time.Now(),
		GameState:          state,
		InitialPredictions: predictions,
		Message:            text,
	}
}

func (m GameInitialized) MessageType() string { return m.Type }

// LiveUpdate bundles a consumed event with the state snapshot taken right
// after applying it. Enrichment fields stay nil when a collaborator failed
// or the actor could not be resolved; the event still goes out.
type LiveUpdate struct {
	Type              string              `json:"type"`
	Timestamp         time.Time           `json:"timestamp"`
	Event             event.GameEvent     `json:"event"`
	GameState         domain.Snapshot     `json:"game_state"`
	UpdatedPrediction *domain.Prediction  `json:"updated_prediction,omitempty"`
	Explanation       *domain.Explanation `json:"explanation,omitempty"`
	ImpactAnalysis    string              `json:"impact_analysis,omitempty"`
}

func NewLiveUpdate(evt event.GameEvent, state domain.Snapshot) LiveUpdate {
	return LiveUpdate{
		Type:      TypeLiveUpdate,
		Timestamp: time.Now(),
		Event:     evt,
		GameState: state,
	}
}

func (m LiveUpdate) MessageType() string { return m.Type }

// Tick is the lightweight per-second heartbeat keeping subscriber clocks in
// sync even when no game event occurs.
type Tick struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	GameState domain.Snapshot `json:"game_state"`
}

func NewTick(state domain.Snapshot) Tick {
	return Tick{Type: TypeTick, Timestamp: time.Now(), GameState: state}
}

func (m Tick) MessageType() string { return m.Type }

type ScenarioInfo struct {
	Kind        domain.ScenarioKind `json:"type"`
	Description string              `json:"description"`
}

type ScenarioUpdate struct {
	Type               string             `json:"type"`
	Timestamp          time.Time          `json:"timestamp"`
	Scenario           ScenarioInfo       `json:"scenario"`
	UpdatedPredictions []PredictionBundle `json:"updated_predictions"`
}

func NewScenarioUpdate(info ScenarioInfo, predictions []PredictionBundle) ScenarioUpdate {
	return ScenarioUpdate{
		Type:               TypeScenarioUpdate,
		Timestamp:          time.Now(),
		Scenario:           info,
		UpdatedPredictions: predictions,
	}
}

func (m ScenarioUpdate) MessageType() string { return m.Type }

// Answer replies to a single subscriber's question; it is never broadcast.
type Answer struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	PlayerID string `json:"player_id"`
}

func NewAnswer(msgType, question, answer, playerID string) Answer {
	return Answer{Type: msgType, Question: question, Answer: answer, PlayerID: playerID}
}

func (m Answer) MessageType() string { return m.Type }

// Encode marshals any outbound message to its JSON wire form.
func Encode(msg Outbound) ([]byte, error) {
	return json.Marshal(msg)
}
