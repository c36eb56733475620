//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"seetheplay/domain"
	"seetheplay/message"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Subscriber is one live delivery channel held by the broadcaster.
// A failed Send marks the subscriber for eviction; it is never retried.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, msg message.Outbound) error
	Close() error
}

// DataSource resolves teams and rosters from the sports data provider.
type DataSource interface {
	FindTeam(ctx context.Context, name string) (domain.Team, error)
	TeamPlayers(ctx context.Context, teamID string) ([]domain.Player, error)
	TeamStatistics(ctx context.Context, teamID string) (domain.TeamStats, error)
}

// Analytics computes per-stat performance predictions for a player.
// The scenario context, when non-nil, applies to this call only.
type Analytics interface {
	Predict(ctx context.Context, player domain.Player, teamID string, scenario *domain.ScenarioContext) (domain.Prediction, error)
}

// Explainer turns predictions into human-readable narratives and answers
// free-form questions about them.
type Explainer interface {
	Explain(prediction domain.Prediction) (domain.Explanation, error)
	Answer(ctx context.Context, question string, player domain.PlayerContext) (string, error)
}
