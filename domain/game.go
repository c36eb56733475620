// Package domain holds the simulated game model: one mutable GameState per
// process, the fixed roster it plays with, and the prediction types the
// analytics collaborator produces.
package domain

import (
	"fmt"
)

type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
)

const (
	QuarterSeconds = 900
	FinalQuarter   = 4
)

type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

type Player struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

func (p Player) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

type TeamStats struct {
	OffensiveRating float64 `json:"offensive_rating"`
	Pace            float64 `json:"pace"`
}

// GameState is the single mutable record of one simulated game. It carries
// no synchronization of its own: the engine owns it and performs every
// mutation under one lock hold.
type GameState struct {
	GameID       string
	HomeTeam     Team
	AwayTeam     Team
	Status       GameStatus
	Quarter      int
	ClockSeconds int
	HomeScore    int
	AwayScore    int
	Roster       []Player
	EventCursor  int
}

// NewGameState initializes a game at the top of the first quarter.
func NewGameState(gameID string, home, away Team, roster []Player) *GameState {
	return &GameState{
		GameID:       gameID,
		HomeTeam:     home,
		AwayTeam:     away,
		Status:       StatusInProgress,
		Quarter:      1,
		ClockSeconds: QuarterSeconds,
		Roster:       roster,
	}
}

// TickClock burns one second off the game clock and rolls the quarter over
// when it expires. It returns true when the fourth quarter has run out and
// the game is complete.
func (g *GameState) TickClock() bool {
	if g.Status != StatusInProgress {
		return false
	}
	if g.ClockSeconds > 0 {
		g.ClockSeconds--
	}
	if g.ClockSeconds > 0 {
		return false
	}
	if g.Quarter < FinalQuarter {
		g.Quarter++
		g.ClockSeconds = QuarterSeconds
		return false
	}
	g.Status = StatusCompleted
	return true
}

// AddHomePoints keeps scores monotonically non-decreasing.
func (g *GameState) AddHomePoints(points int) {
	if points > 0 {
		g.HomeScore += points
	}
}

// FindPlayer resolves an actor identifier against the fixed roster.
func (g *GameState) FindPlayer(playerID string) (Player, bool) {
	for _, p := range g.Roster {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// Snapshot is the consistent, immutable view of a GameState used to build
// outbound messages. It is always taken in full before any broadcast.
type Snapshot struct {
	GameID        string     `json:"game_id"`
	Quarter       int        `json:"quarter"`
	TimeRemaining string     `json:"time_remaining"`
	HomeTeam      string     `json:"home_team"`
	AwayTeam      string     `json:"away_team"`
	HomeScore     int        `json:"home_score"`
	AwayScore     int        `json:"away_score"`
	Status        GameStatus `json:"status"`
}

func (g *GameState) Snapshot() Snapshot {
	return Snapshot{
		GameID:        g.GameID,
		Quarter:       g.Quarter,
		TimeRemaining: formatClock(g.ClockSeconds),
		HomeTeam:      g.HomeTeam.Name,
		AwayTeam:      g.AwayTeam.Name,
		HomeScore:     g.HomeScore,
		AwayScore:     g.AwayScore,
		Status:        g.Status,
	}
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ResetOverrides carries the optional fields a reset may apply instead of
// the defaults. Nil pointers leave the default in place.
type ResetOverrides struct {
	HomeTeamName *string `json:"home_team_name,omitempty"`
	AwayTeamName *string `json:"away_team_name,omitempty"`
	Quarter      *int    `json:"quarter,omitempty" validate:"omitempty,gte=1,lte=4"`
	ClockSeconds *int    `json:"clock_seconds,omitempty" validate:"omitempty,gte=0,lte=900"`
}

// ScenarioContext is a transient set of overrides applied to analytics input
// for a single recompute cycle. It never merges into GameState.
type ScenarioContext struct {
	WeatherImpact   *float64
	HomeAdvantage   *float64
	OpponentDefense *float64
	HighScoring     bool
}

type ScenarioKind string

const (
	ScenarioWeatherChange ScenarioKind = "weather_change"
	ScenarioShootout      ScenarioKind = "shootout"
)
