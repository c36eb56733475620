package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"seetheplay/domain"
	"seetheplay/mocks"
	"seetheplay/observability"
	"seetheplay/runtime"
)

type serviceFixture struct {
	engine *runtime.Engine
	server *httptest.Server
}

func newServiceFixture(t *testing.T, ctrl *gomock.Controller) *serviceFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	ds := mocks.NewMockDataSource(ctrl)
	ds.EXPECT().FindTeam(gomock.Any(), gomock.Any()).
		Return(domain.Team{ID: "t1", Name: "Eagles", Market: "Philadelphia"}, nil).AnyTimes()
	ds.EXPECT().TeamPlayers(gomock.Any(), "t1").Return([]domain.Player{
		{ID: "p1", FirstName: "Jalen", LastName: "Hurts", Position: "QB"},
	}, nil).AnyTimes()
	ds.EXPECT().TeamStatistics(gomock.Any(), gomock.Any()).
		Return(domain.TeamStats{OffensiveRating: 0.8, Pace: 0.7}, nil).AnyTimes()

	analytics := mocks.NewMockAnalytics(ctrl)
	analytics.EXPECT().Predict(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Prediction{PlayerID: "p1", Predictions: map[domain.Stat]*domain.StatLine{
			domain.StatPassingYards: {PredictedValue: 285, Confidence: 0.8},
		}}, nil).AnyTimes()

	explainer := mocks.NewMockExplainer(ctrl)
	explainer.EXPECT().Explain(gomock.Any()).Return(domain.Explanation{}, nil).AnyTimes()

	monitoring := observability.NewMonitoringManager()
	broadcaster := runtime.NewBroadcaster(log, time.Second, monitoring)
	engine := runtime.NewEngine(log, runtime.EngineConfig{
		TeamName:        "Eagles",
		RosterSize:      10,
		InitialPlayers:  1,
		TickInterval:    time.Hour,
		EventMinDelay:   time.Hour,
		EventMaxDelay:   2 * time.Hour,
		RestartInterval: 10 * time.Millisecond,
		MetricInterval:  time.Hour,
	}, ds, analytics, explainer, broadcaster, monitoring, rand.New(rand.NewSource(22)))
	t.Cleanup(func() { _ = engine.Stop() })

	mux := http.NewServeMux()
	NewLiveService(log, ctx, engine, broadcaster, monitoring).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &serviceFixture{engine: engine, server: server}
}

func postJSON(t *testing.T, url string, body []byte) map[string]any {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestLiveService_LifecycleEndpoints(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newServiceFixture(t, ctrl)
	base := fixture.server.URL

	// Stopping before starting is a polite no-op
	req.Equal("not_running", postJSON(t, base+"/api/live/stop", nil)["status"])

	req.Equal("started", postJSON(t, base+"/api/live/start", nil)["status"])
	req.Equal("already_running", postJSON(t, base+"/api/live/start", nil)["status"])

	status := getJSON(t, base+"/api/live/status")
	req.Equal(true, status["running"])
	req.NotNil(status["game"])

	req.Equal("stopped", postJSON(t, base+"/api/live/stop", nil)["status"])
	req.Equal(false, getJSON(t, base+"/api/live/status")["running"])
}

func TestLiveService_ResetWithOverrides(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newServiceFixture(t, ctrl)
	base := fixture.server.URL

	req.Equal("started", postJSON(t, base+"/api/live/start", nil)["status"])

	body, err := json.Marshal(domain.ResetOverrides{AwayTeamName: ptr("Giants"), Quarter: ptr(2)})
	req.NoError(err)
	req.Equal("reset", postJSON(t, base+"/api/live/reset", body)["status"])

	snap, ok := fixture.engine.CurrentSnapshot()
	req.True(ok)
	req.Equal("Giants", snap.AwayTeam)
	req.Equal(2, snap.Quarter)
}

func TestLiveService_DiagnosticsAndHealth(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	fixture := newServiceFixture(t, ctrl)
	base := fixture.server.URL

	req.Equal("healthy", getJSON(t, base+"/health")["status"])

	diagnostics := getJSON(t, base+"/api/diagnostics")
	req.Contains(diagnostics, "events_played")
	req.Contains(diagnostics, "broadcasts_sent")
	req.Contains(diagnostics, "alloc_mem_mb")
}

func ptr[T any](v T) *T { return &v }
