package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"seetheplay/domain"
	"seetheplay/errors"
	"seetheplay/message"
	"seetheplay/mocks"
)

func TestScenarioHandler_WeatherChange(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	analytics := mocks.NewMockAnalytics(ctrl)
	var seenScenarios []*domain.ScenarioContext
	analytics.EXPECT().Predict(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, player domain.Player, teamID string, scenario *domain.ScenarioContext) (domain.Prediction, error) {
			if scenario != nil {
				seenScenarios = append(seenScenarios, scenario)
			}
			return stubPrediction(player), nil
		}).AnyTimes()

	engine, c, _ := newTestEngine(t, healthyDataSource(ctrl), analytics, happyExplainer(ctrl))
	handler := NewScenarioHandler(engine.log, engine)
	ctx := context.Background()

	req.NoError(engine.Start(ctx))
	defer engine.Stop()
	before, _ := engine.CurrentSnapshot()

	update, err := handler.Apply(ctx, message.ScenarioChange{Kind: "weather_change", Severity: 0.8})
	req.NoError(err)

	// Then at most three players were recomputed under the override
	req.LessOrEqual(len(update.UpdatedPredictions), maxScenarioPlayers)
	req.NotEmpty(update.UpdatedPredictions)
	req.Equal(domain.ScenarioWeatherChange, update.Scenario.Kind)
	req.NotEmpty(seenScenarios)
	for _, scenario := range seenScenarios {
		req.NotNil(scenario.WeatherImpact)
		req.InDelta(0.2, *scenario.WeatherImpact, 0.001)
	}

	// And the game state itself is untouched
	after, _ := engine.CurrentSnapshot()
	req.Equal(before, after)

	// And the update was broadcast
	req.Len(c.ofType(message.TypeScenarioUpdate), 1)
}

func TestScenarioHandler_Shootout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	analytics := mocks.NewMockAnalytics(ctrl)
	analytics.EXPECT().Predict(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, player domain.Player, teamID string, scenario *domain.ScenarioContext) (domain.Prediction, error) {
			if scenario != nil {
				require.True(t, scenario.HighScoring)
			}
			return stubPrediction(player), nil
		}).AnyTimes()

	engine, _, _ := newTestEngine(t, healthyDataSource(ctrl), analytics, happyExplainer(ctrl))
	handler := NewScenarioHandler(engine.log, engine)
	ctx := context.Background()

	req.NoError(engine.Start(ctx))
	defer engine.Stop()

	update, err := handler.Apply(ctx, message.ScenarioChange{Kind: "shootout", Severity: 0.5})
	req.NoError(err)
	req.Equal(domain.ScenarioShootout, update.Scenario.Kind)
}

func TestScenarioHandler_RejectsUnknownKind(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine, _, _ := newTestEngine(t, healthyDataSource(ctrl), happyAnalytics(ctrl), happyExplainer(ctrl))
	handler := NewScenarioHandler(engine.log, engine)

	_, err := handler.Apply(context.Background(), message.ScenarioChange{Kind: "earthquake"})
	req.ErrorIs(err, errors.ErrInvalidScenario)
}

func TestScenarioHandler_RequiresRunningGame(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine, _, _ := newTestEngine(t, healthyDataSource(ctrl), happyAnalytics(ctrl), happyExplainer(ctrl))
	handler := NewScenarioHandler(engine.log, engine)

	_, err := handler.Apply(context.Background(), message.ScenarioChange{Kind: "shootout"})
	req.ErrorIs(err, errors.ErrNotRunning)
}
