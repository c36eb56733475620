// Package runtime drives the live simulation: it owns the game state, the
// pre-generated event catalog, the broadcaster, and the lifecycle of the
// periodic workers. It orchestrates without containing prediction or
// explanation logic.
package runtime

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"seetheplay/domain"
	"seetheplay/domain/event"
)

const (
	minEventsPerQuarter = 10
	maxEventsPerQuarter = 15
)

// CatalogGenerator produces the bounded, ordered event sequence a game
// plays through. Each call draws fresh UUIDs, so a regenerated catalog
// never reuses identifiers from a prior epoch.
type CatalogGenerator struct {
	rng *rand.Rand
}

func NewCatalogGenerator(rng *rand.Rand) *CatalogGenerator {
	return &CatalogGenerator{rng: rng}
}

// Generate builds 10-15 events for each of the four quarters, drawing the
// kind from the weighted table, the actor uniformly from the roster, and a
// kind-specific yardage magnitude.
func (g *CatalogGenerator) Generate(roster []domain.Player) []event.GameEvent {
	var events []event.GameEvent
	for quarter := 1; quarter <= domain.FinalQuarter; quarter++ {
		count := minEventsPerQuarter + g.rng.Intn(maxEventsPerQuarter-minEventsPerQuarter+1)
		for i := 0; i < count; i++ {
			events = append(events, g.draw(quarter, roster))
		}
	}
	return events
}

func (g *CatalogGenerator) draw(quarter int, roster []domain.Player) event.GameEvent {
	kind := g.drawKind()
	actor := roster[g.rng.Intn(len(roster))]
	yards := g.drawYards(kind)

	return event.GameEvent{
		ID:            uuid.NewString(),
		Kind:          kind,
		Quarter:       quarter,
		ActorPlayerID: actor.ID,
		ActorName:     actor.FullName(),
		Description:   g.describe(kind, actor, yards),
		Yards:         yards,
		IsTouchdown:   kind == event.Touchdown,
		IsTurnover:    kind == event.Interception || kind == event.Fumble,
	}
}

func (g *CatalogGenerator) drawKind() event.Kind {
	total := 0
	for _, kind := range event.Kinds {
		total += event.Weights[kind]
	}
	pick := g.rng.Intn(total)
	for _, kind := range event.Kinds {
		pick -= event.Weights[kind]
		if pick < 0 {
			return kind
		}
	}
	return event.Kinds[len(event.Kinds)-1]
}

// drawYards returns the magnitude of the play. Zero-yard kinds (timeouts,
// turnovers, penalties) stay at zero.
func (g *CatalogGenerator) drawYards(kind event.Kind) int {
	switch kind {
	case event.PassCompletion:
		return g.between(8, 25)
	case event.Rush:
		return g.between(1, 15)
	case event.Reception:
		return g.between(5, 20)
	case event.Touchdown:
		return g.between(1, 25)
	case event.FieldGoal:
		return g.between(25, 50)
	case event.Sack:
		return g.between(3, 12)
	default:
		return 0
	}
}

func (g *CatalogGenerator) between(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

func (g *CatalogGenerator) describe(kind event.Kind, actor domain.Player, yards int) string {
	name := actor.FullName()
	switch kind {
	case event.PassCompletion:
		return fmt.Sprintf("%s completes pass for %d yards", name, yards)
	case event.Rush:
		return fmt.Sprintf("%s rushes for %d yards", name, yards)
	case event.Reception:
		return fmt.Sprintf("%s hauls in a catch for %d yards", name, yards)
	case event.Touchdown:
		return fmt.Sprintf("TOUCHDOWN! %s scores from %d yards out", name, yards)
	case event.FieldGoal:
		return fmt.Sprintf("Field goal good from %d yards", yards)
	case event.Interception:
		return "Pass intercepted by defense"
	case event.Fumble:
		return fmt.Sprintf("%s fumbles, recovered by defense", name)
	case event.Sack:
		return fmt.Sprintf("%s sacked for %d yard loss", name, yards)
	case event.Timeout:
		return "Timeout called by team"
	case event.Penalty:
		penalties := []string{"Holding", "False Start", "Pass Interference"}
		return fmt.Sprintf("Penalty: %s on offense", penalties[g.rng.Intn(len(penalties))])
	default:
		return fmt.Sprintf("Game event: %s", kind)
	}
}
