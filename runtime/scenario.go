package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"seetheplay/domain"
	"seetheplay/errors"
	"seetheplay/message"
)

// maxScenarioPlayers bounds how many recomputations one scenario request
// may trigger.
const maxScenarioPlayers = 3

// ScenarioHandler serves what-if requests: it recomputes a few predictions
// under a transient scenario context and broadcasts the result. The game
// state itself is never touched; the next regular update is computed as if
// the scenario had never happened.
type ScenarioHandler struct {
	log    *slog.Logger
	engine *Engine
}

func NewScenarioHandler(log *slog.Logger, engine *Engine) *ScenarioHandler {
	return &ScenarioHandler{log: log, engine: engine}
}

// Apply recomputes predictions for up to maxScenarioPlayers roster players
// under the requested scenario and broadcasts the resulting update to every
// subscriber.
func (h *ScenarioHandler) Apply(ctx context.Context, change message.ScenarioChange) (message.ScenarioUpdate, error) {
	scenario, info, err := buildScenario(change)
	if err != nil {
		return message.ScenarioUpdate{}, err
	}

	h.engine.mu.Lock()
	if h.engine.game == nil {
		h.engine.mu.Unlock()
		return message.ScenarioUpdate{}, errors.ErrNotRunning
	}
	players := h.engine.game.Roster
	if len(players) > maxScenarioPlayers {
		players = players[:maxScenarioPlayers]
	}
	teamID := h.engine.game.HomeTeam.ID
	h.engine.mu.Unlock()

	bundles := h.engine.predictBundles(ctx, players, teamID, scenario)
	update := message.NewScenarioUpdate(info, bundles)

	h.log.Info("Scenario applied", "type", info.Kind, "players", len(bundles))
	h.engine.broadcaster.Broadcast(ctx, update)
	return update, nil
}

// buildScenario maps a validated payload onto the analytics overrides and
// the human-readable description shipped with the update.
func buildScenario(change message.ScenarioChange) (*domain.ScenarioContext, message.ScenarioInfo, error) {
	switch domain.ScenarioKind(change.Kind) {
	case domain.ScenarioWeatherChange:
		impact := 1.0 - change.Severity
		return &domain.ScenarioContext{WeatherImpact: &impact},
			message.ScenarioInfo{
				Kind:        domain.ScenarioWeatherChange,
				Description: fmt.Sprintf("Weather conditions worsening (severity %.1f), passing game affected", change.Severity),
			}, nil
	case domain.ScenarioShootout:
		return &domain.ScenarioContext{HighScoring: true},
			message.ScenarioInfo{
				Kind:        domain.ScenarioShootout,
				Description: "Game turning into a high-scoring shootout, offensive volume up",
			}, nil
	default:
		return nil, message.ScenarioInfo{}, errors.ErrInvalidScenario
	}
}
