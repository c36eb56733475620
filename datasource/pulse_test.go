package datasource

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"seetheplay/domain"
	"seetheplay/errors"
)

func newPulseTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/leagues/NFL/teams/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Eagles" {
			_ = json.NewEncoder(w).Encode([]domain.Team{})
			return
		}
		_ = json.NewEncoder(w).Encode([]domain.Team{
			{ID: "t_phi", Name: "Eagles", Market: "Philadelphia"},
		})
	})
	mux.HandleFunc("/v1/leagues/NFL/teams/t_phi/players", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]domain.Player{
			{ID: "p1", FirstName: "Jalen", LastName: "Hurts", Position: "QB"},
			{ID: "p2", FirstName: "Saquon", LastName: "Barkley", Position: "RB"},
		})
	})
	mux.HandleFunc("/v1/leagues/NFL/teams/t_phi/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.TeamStats{OffensiveRating: 0.82, Pace: 0.71})
	})
	return httptest.NewServer(mux)
}

func TestPulseClient_FindTeam(t *testing.T) {
	req := require.New(t)
	server := newPulseTestServer(t)
	defer server.Close()
	client := NewPulseClient(logs.GetLoggerFromLevel(slog.LevelDebug), server.URL, server.Client())

	team, err := client.FindTeam(context.Background(), "Eagles")
	req.NoError(err)
	req.Equal("t_phi", team.ID)
	req.Equal("Philadelphia", team.Market)
}

func TestPulseClient_FindTeamUnknownName(t *testing.T) {
	req := require.New(t)
	server := newPulseTestServer(t)
	defer server.Close()
	client := NewPulseClient(logs.GetLoggerFromLevel(slog.LevelDebug), server.URL, server.Client())

	_, err := client.FindTeam(context.Background(), "Atlantis")
	req.ErrorIs(err, errors.ErrTeamNotFound)
}

func TestPulseClient_TeamPlayersAndStats(t *testing.T) {
	req := require.New(t)
	server := newPulseTestServer(t)
	defer server.Close()
	client := NewPulseClient(logs.GetLoggerFromLevel(slog.LevelDebug), server.URL, server.Client())
	ctx := context.Background()

	players, err := client.TeamPlayers(ctx, "t_phi")
	req.NoError(err)
	req.Len(players, 2)
	req.Equal("Jalen Hurts", players[0].FullName())

	stats, err := client.TeamStatistics(ctx, "t_phi")
	req.NoError(err)
	req.InDelta(0.82, stats.OffensiveRating, 0.001)
}

func TestPulseClient_ProviderDown(t *testing.T) {
	req := require.New(t)
	server := newPulseTestServer(t)
	server.Close() // refuse every connection
	client := NewPulseClient(logs.GetLoggerFromLevel(slog.LevelDebug), server.URL, nil)

	_, err := client.FindTeam(context.Background(), "Eagles")
	req.Error(err)
}

func TestPulseClient_NonOKStatus(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	client := NewPulseClient(logs.GetLoggerFromLevel(slog.LevelDebug), server.URL, server.Client())

	_, err := client.TeamPlayers(context.Background(), "t_phi")
	req.ErrorContains(err, "pulse status 500")
}

func TestSampleRoster_MatchesDefaultLimit(t *testing.T) {
	req := require.New(t)
	req.Len(SampleRoster(), 10)
	for _, player := range SampleRoster() {
		req.NotEmpty(player.ID)
		req.NotEmpty(player.Position)
	}
}
