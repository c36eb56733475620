package runtime

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"seetheplay/domain"
	"seetheplay/domain/event"
)

func testRoster() []domain.Player {
	return []domain.Player{
		{ID: "p1", FirstName: "Jalen", LastName: "Hurts", Position: "QB"},
		{ID: "p2", FirstName: "Saquon", LastName: "Barkley", Position: "RB"},
		{ID: "p3", FirstName: "A.J.", LastName: "Brown", Position: "WR"},
	}
}

func TestCatalogGenerator_Bounds(t *testing.T) {
	req := require.New(t)
	generator := NewCatalogGenerator(rand.New(rand.NewSource(42)))

	events := generator.Generate(testRoster())

	// Then the whole game stays within the per-quarter bounds
	req.GreaterOrEqual(len(events), 4*minEventsPerQuarter)
	req.LessOrEqual(len(events), 4*maxEventsPerQuarter)

	perQuarter := map[int]int{}
	for _, evt := range events {
		perQuarter[evt.Quarter]++
	}
	req.Len(perQuarter, 4)
	for quarter, count := range perQuarter {
		req.GreaterOrEqual(count, minEventsPerQuarter, "quarter %d", quarter)
		req.LessOrEqual(count, maxEventsPerQuarter, "quarter %d", quarter)
	}
}

func TestCatalogGenerator_EventsArePlausible(t *testing.T) {
	req := require.New(t)
	generator := NewCatalogGenerator(rand.New(rand.NewSource(7)))
	roster := testRoster()
	rosterIDs := map[string]bool{}
	for _, p := range roster {
		rosterIDs[p.ID] = true
	}

	for _, evt := range generator.Generate(roster) {
		req.NotEmpty(evt.ID)
		req.NotEmpty(evt.Description)
		req.True(rosterIDs[evt.ActorPlayerID], "actor %s not on roster", evt.ActorPlayerID)
		req.Contains(event.Kinds, evt.Kind)
		req.Equal(evt.Kind == event.Touchdown, evt.IsTouchdown)
		req.Equal(evt.Kind == event.Interception || evt.Kind == event.Fumble, evt.IsTurnover)

		switch evt.Kind {
		case event.PassCompletion:
			req.InDelta(16.5, float64(evt.Yards), 8.5)
		case event.FieldGoal:
			req.InDelta(37.5, float64(evt.Yards), 12.5)
		case event.Timeout, event.Interception, event.Fumble, event.Penalty:
			req.Zero(evt.Yards)
		}
	}
}

func TestCatalogGenerator_FreshIdentifiersPerGeneration(t *testing.T) {
	req := require.New(t)
	generator := NewCatalogGenerator(rand.New(rand.NewSource(1)))
	roster := testRoster()

	seen := map[string]bool{}
	for _, evt := range generator.Generate(roster) {
		req.False(seen[evt.ID])
		seen[evt.ID] = true
	}
	// A second epoch never reuses identifiers
	for _, evt := range generator.Generate(roster) {
		req.False(seen[evt.ID])
	}
}
