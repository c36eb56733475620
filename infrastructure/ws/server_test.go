package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"seetheplay/domain"
	"seetheplay/message"
	"seetheplay/mocks"
	"seetheplay/observability"
	"seetheplay/runtime"
)

type wsFixture struct {
	engine *runtime.Engine
	server *httptest.Server
	url    string
}

func newWSFixture(t *testing.T, ctrl *gomock.Controller) *wsFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	roster := []domain.Player{
		{ID: "p1", FirstName: "Jalen", LastName: "Hurts", Position: "QB"},
		{ID: "p2", FirstName: "Saquon", LastName: "Barkley", Position: "RB"},
	}
	ds := mocks.NewMockDataSource(ctrl)
	ds.EXPECT().FindTeam(gomock.Any(), gomock.Any()).
		Return(domain.Team{ID: "t1", Name: "Eagles", Market: "Philadelphia"}, nil).AnyTimes()
	ds.EXPECT().TeamPlayers(gomock.Any(), "t1").Return(roster, nil).AnyTimes()
	ds.EXPECT().TeamStatistics(gomock.Any(), gomock.Any()).
		Return(domain.TeamStats{OffensiveRating: 0.8, Pace: 0.7}, nil).AnyTimes()

	analytics := mocks.NewMockAnalytics(ctrl)
	analytics.EXPECT().Predict(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, player domain.Player, teamID string, scenario *domain.ScenarioContext) (domain.Prediction, error) {
			return domain.Prediction{
				PlayerID:   player.ID,
				PlayerName: player.FullName(),
				Position:   player.Position,
				Predictions: map[domain.Stat]*domain.StatLine{
					domain.StatPassingYards: {PredictedValue: 285, Confidence: 0.8, ProbabilityOver: 0.6, ProbabilityUnder: 0.4},
				},
				Timestamp: time.Now(),
			}, nil
		}).AnyTimes()

	explainer := mocks.NewMockExplainer(ctrl)
	explainer.EXPECT().Explain(gomock.Any()).
		Return(domain.Explanation{OverallSummary: "solid outlook"}, nil).AnyTimes()
	explainer.EXPECT().Answer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Around 285 passing yards.", nil).AnyTimes()

	monitoring := observability.NewMonitoringManager()
	broadcaster := runtime.NewBroadcaster(log, time.Second, monitoring)
	engine := runtime.NewEngine(log, runtime.EngineConfig{
		TeamName:        "Eagles",
		RosterSize:      10,
		InitialPlayers:  2,
		TickInterval:    time.Hour,
		EventMinDelay:   time.Hour,
		EventMaxDelay:   2 * time.Hour,
		RestartInterval: 10 * time.Millisecond,
		MetricInterval:  time.Hour,
	}, ds, analytics, explainer, broadcaster, monitoring, rand.New(rand.NewSource(11)))
	require.NoError(t, engine.Start(ctx))
	t.Cleanup(func() { _ = engine.Stop() })

	scenarios := runtime.NewScenarioHandler(log, engine)
	wsServer := NewServer(log, ctx, engine, scenarios, broadcaster, explainer, time.Second)
	server := httptest.NewServer(http.HandlerFunc(wsServer.HandleWS))
	t.Cleanup(server.Close)

	return &wsFixture{
		engine: engine,
		server: server,
		url:    "ws" + strings.TrimPrefix(server.URL, "http"),
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readTyped(t *testing.T, conn *websocket.Conn, wantType string) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var envelope struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		if envelope.Type == wantType {
			return raw
		}
	}
}

func TestServer_NewSubscriberGetsInitialization(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	conn := dial(t, fixture.url)

	raw := readTyped(t, conn, message.TypeGameInitialized)
	var init message.GameInitialized
	req.NoError(json.Unmarshal(raw, &init))
	req.Equal("Eagles", init.GameState.HomeTeam)
	req.Len(init.InitialPredictions, 2)
}

func TestServer_WelcomePrecedesBroadcasts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	// Given broadcast traffic flowing while the client connects
	stop := make(chan struct{})
	ticking := make(chan struct{})
	go func() {
		defer close(ticking)
		for {
			select {
			case <-stop:
				return
			default:
				fixture.engine.Tick(context.Background())
				time.Sleep(time.Millisecond)
			}
		}
	}()
	defer func() { close(stop); <-ticking }()

	conn := dial(t, fixture.url)

	// Then the very first frame is the initialization payload, never a tick
	req.NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	_, raw, err := conn.ReadMessage()
	req.NoError(err)

	var envelope struct {
		Type string `json:"type"`
	}
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal(message.TypeGameInitialized, envelope.Type)
}

func TestServer_QuestionGetsDirectAnswer(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	conn := dial(t, fixture.url)
	readTyped(t, conn, message.TypeGameInitialized)

	question := map[string]string{
		"type":      message.TypeChatGPTQuestion,
		"question":  "How many yards?",
		"player_id": "p1",
	}
	req.NoError(conn.WriteJSON(question))

	raw := readTyped(t, conn, message.TypeChatGPTAnswer)
	var answer message.Answer
	req.NoError(json.Unmarshal(raw, &answer))
	req.Equal("Around 285 passing yards.", answer.Answer)
	req.Equal("p1", answer.PlayerID)
}

func TestServer_UnknownPlayerQuestionStillAnswered(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	conn := dial(t, fixture.url)
	readTyped(t, conn, message.TypeGameInitialized)

	req.NoError(conn.WriteJSON(map[string]string{
		"type":      message.TypeCedarQuestion,
		"question":  "Will he score?",
		"player_id": "ghost",
	}))

	raw := readTyped(t, conn, message.TypeCedarAnswer)
	var answer message.Answer
	req.NoError(json.Unmarshal(raw, &answer))
	req.Contains(answer.Answer, "don't have predictions")
}

func TestServer_ScenarioChangeIsBroadcast(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	conn := dial(t, fixture.url)
	readTyped(t, conn, message.TypeGameInitialized)

	payload := map[string]any{
		"type": message.TypeScenarioChange,
		"data": map[string]any{"type": "shootout", "severity": 0.5},
	}
	req.NoError(conn.WriteJSON(payload))

	raw := readTyped(t, conn, message.TypeScenarioUpdate)
	var update message.ScenarioUpdate
	req.NoError(json.Unmarshal(raw, &update))
	req.Equal(domain.ScenarioShootout, update.Scenario.Kind)
	req.NotEmpty(update.UpdatedPredictions)
}

func TestServer_MalformedFrameKeepsConnectionAlive(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	conn := dial(t, fixture.url)
	readTyped(t, conn, message.TypeGameInitialized)

	// Garbage first, a valid question right after
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	req.NoError(conn.WriteJSON(map[string]string{
		"type":      message.TypeChatGPTQuestion,
		"question":  "still there?",
		"player_id": "p1",
	}))

	readTyped(t, conn, message.TypeChatGPTAnswer)
}

func TestServer_InvalidScenarioSeverityIsDropped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newWSFixture(t, ctrl)

	conn := dial(t, fixture.url)
	readTyped(t, conn, message.TypeGameInitialized)

	// Severity out of range fails validation and produces no update
	req.NoError(conn.WriteJSON(map[string]any{
		"type": message.TypeScenarioChange,
		"data": map[string]any{"type": "weather_change", "severity": 3.5},
	}))
	// The next visible message is the answer to a follow-up question
	req.NoError(conn.WriteJSON(map[string]string{
		"type":      message.TypeChatGPTQuestion,
		"question":  "ok?",
		"player_id": "p1",
	}))

	req.NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	_, raw, err := conn.ReadMessage()
	req.NoError(err)
	var envelope struct {
		Type string `json:"type"`
	}
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal(message.TypeChatGPTAnswer, envelope.Type)
}
