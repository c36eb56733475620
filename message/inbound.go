package message

import "encoding/json"

const (
	TypeScenarioChange  = "scenario_change"
	TypeGameReset       = "game_reset"
	TypeCedarQuestion   = "cedar_question"
	TypeChatGPTQuestion = "chatgpt_question"
)

// Inbound is the envelope every client message arrives in. Data stays raw
// until the type-specific payload is decoded and validated.
type Inbound struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
	Question string          `json:"question,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
}

// ScenarioChange is the payload of a scenario_change message.
type ScenarioChange struct {
	Kind     string  `json:"type" validate:"required,oneof=weather_change shootout"`
	Severity float64 `json:"severity" validate:"gte=0,lte=1"`
}
