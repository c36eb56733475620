// Package datasource talks to the Pulse sports data provider and carries
// the embedded sample data used when the provider is unreachable.
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"seetheplay/domain"
	"seetheplay/errors"
)

const league = "NFL"

// PulseClient implements contract.DataSource against the Pulse HTTP API.
type PulseClient struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
}

func NewPulseClient(log *slog.Logger, baseURL string, client *http.Client) *PulseClient {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &PulseClient{log: log, baseURL: baseURL, client: client}
}

// FindTeam resolves a team by name through the provider's search endpoint.
func (c *PulseClient) FindTeam(ctx context.Context, name string) (domain.Team, error) {
	endpoint := fmt.Sprintf("%s/v1/leagues/%s/teams/search?name=%s",
		c.baseURL, league, url.QueryEscape(name))

	var teams []domain.Team
	if err := c.getJSON(ctx, endpoint, &teams); err != nil {
		return domain.Team{}, err
	}
	if len(teams) == 0 {
		return domain.Team{}, fmt.Errorf("%w: %s", errors.ErrTeamNotFound, name)
	}
	return teams[0], nil
}

// TeamPlayers fetches the full roster of a team.
func (c *PulseClient) TeamPlayers(ctx context.Context, teamID string) ([]domain.Player, error) {
	endpoint := fmt.Sprintf("%s/v1/leagues/%s/teams/%s/players", c.baseURL, league, teamID)

	var players []domain.Player
	if err := c.getJSON(ctx, endpoint, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// TeamStatistics fetches the aggregate ratings the prediction model feeds on.
func (c *PulseClient) TeamStatistics(ctx context.Context, teamID string) (domain.TeamStats, error) {
	endpoint := fmt.Sprintf("%s/v1/leagues/%s/teams/%s/stats", c.baseURL, league, teamID)

	var stats domain.TeamStats
	if err := c.getJSON(ctx, endpoint, &stats); err != nil {
		return domain.TeamStats{}, err
	}
	return stats, nil
}

func (c *PulseClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pulse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pulse status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode pulse response: %w", err)
	}
	return nil
}
