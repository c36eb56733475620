package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"seetheplay/contract"
	"seetheplay/datasource"
	"seetheplay/domain"
	"seetheplay/domain/event"
	"seetheplay/errors"
	"seetheplay/message"
	"seetheplay/observability"
	"seetheplay/runtime/workers"
)

// EngineConfig carries the tuning knobs the engine needs from the
// environment.
type EngineConfig struct {
	TeamName        string
	RosterSize      int
	InitialPlayers  int
	TickInterval    time.Duration
	EventMinDelay   time.Duration
	EventMaxDelay   time.Duration
	RestartInterval time.Duration
	MetricInterval  time.Duration
}

// Engine owns the game lifecycle. One engine drives at most one game at a
// time: Start spins up a fresh state, catalog and worker generation, Stop
// tears the generation down, Reset chains the two. Every state mutation
// happens under a single mutex hold, and broadcasts always carry a snapshot
// taken inside that same hold.
type Engine struct {
	mu          sync.Mutex
	resetMu     sync.Mutex
	log         *slog.Logger
	cfg         EngineConfig
	dataSource  contract.DataSource
	analytics   contract.Analytics
	explainer   contract.Explainer
	broadcaster *Broadcaster
	monitoring  *observability.MonitoringManager
	generator   *CatalogGenerator

	running        bool
	parentCtx      context.Context
	game           *domain.GameState
	catalog        []event.GameEvent
	initialBundles []message.PredictionBundle
	supervisor     contract.ISupervisor
	done           chan struct{}
}

func NewEngine(
	log *slog.Logger,
	cfg EngineConfig,
	dataSource contract.DataSource,
	analytics contract.Analytics,
	explainer contract.Explainer,
	broadcaster *Broadcaster,
	monitoring *observability.MonitoringManager,
	rng *rand.Rand,
) *Engine {
	return &Engine{
		log:         log,
		cfg:         cfg,
		dataSource:  dataSource,
		analytics:   analytics,
		explainer:   explainer,
		broadcaster: broadcaster,
		monitoring:  monitoring,
		generator:   NewCatalogGenerator(rng),
	}
}

// Start brings a new game up. Starting an already running engine is a safe
// no-op signalled by ErrAlreadyRunning.
func (e *Engine) Start(ctx context.Context) error {
	return e.start(ctx, nil)
}

func (e *Engine) start(ctx context.Context, overrides *domain.ResetOverrides) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.ErrAlreadyRunning
	}
	e.mu.Unlock()

	// Collaborator round-trips happen with the lock released: roster
	// resolution and the opening enrichment pass must not stall concurrent
	// state reads or scenario recomputes against the previous generation.
	game := e.initGame(ctx, overrides)
	catalog := e.generator.Generate(game.Roster)

	leaders := append([]domain.Player(nil), game.Roster...)
	if len(leaders) > e.cfg.InitialPlayers {
		leaders = leaders[:e.cfg.InitialPlayers]
	}
	bundles := e.predictBundles(ctx, leaders, game.HomeTeam.ID, nil)

	supervisor := workers.NewSupervisor(e.log, e.cfg.RestartInterval)
	supervisor.Add(
		workers.NewClockWorker(e.log, e.cfg.TickInterval, e.Tick, e.onGameComplete),
		workers.NewPlaybackWorker(e.log, e.cfg.EventMinDelay, e.cfg.EventMaxDelay, e.PlayNext),
		workers.NewHeartbeatWorker(e.log, e.cfg.MetricInterval, e.monitoring, e.broadcaster.Count),
	)
	done := make(chan struct{})

	e.mu.Lock()
	if e.running {
		// Lost the race against a concurrent start. Nothing of this
		// attempt leaked: the supervisor only spawns goroutines in Run.
		e.mu.Unlock()
		return errors.ErrAlreadyRunning
	}
	e.game = game
	e.catalog = catalog
	e.parentCtx = ctx
	e.initialBundles = bundles
	e.supervisor = supervisor
	e.done = done
	e.running = true
	snap := game.Snapshot()
	total := len(catalog)
	e.mu.Unlock()

	go func() {
		supervisor.Run(ctx)
		close(done)
	}()

	e.log.Info("Game started",
		"game_id", snap.GameID,
		"home", snap.HomeTeam,
		"away", snap.AwayTeam,
		"catalog_size", total,
	)
	e.broadcaster.Broadcast(ctx, message.NewGameInitialized(snap, bundles,
		fmt.Sprintf("Live game simulation started: %s vs %s", snap.HomeTeam, snap.AwayTeam)))
	return nil
}

// initGame resolves the home team and roster from the data source and falls
// back to the embedded sample data when the provider is unreachable. The
// simulation must come up either way.
func (e *Engine) initGame(ctx context.Context, overrides *domain.ResetOverrides) *domain.GameState {
	teamName := e.cfg.TeamName
	if overrides != nil && overrides.HomeTeamName != nil {
		teamName = *overrides.HomeTeamName
	}

	home, err := e.dataSource.FindTeam(ctx, teamName)
	var roster []domain.Player
	if err != nil {
		e.log.Warn("Data source unavailable, using sample team", "team", teamName, "error", err)
		home = datasource.SampleTeam()
	} else {
		roster, err = e.dataSource.TeamPlayers(ctx, home.ID)
		if err != nil || len(roster) == 0 {
			e.log.Warn("Roster lookup failed, using sample roster", "team_id", home.ID, "error", err)
			roster = nil
		}
	}
	if len(roster) == 0 {
		roster = datasource.SampleRoster()
	}
	if len(roster) > e.cfg.RosterSize {
		roster = roster[:e.cfg.RosterSize]
	}

	away := domain.Team{ID: "team_opponent", Name: "Cowboys", Market: "Dallas"}
	if overrides != nil && overrides.AwayTeamName != nil {
		away.Name = *overrides.AwayTeamName
		away.Market = ""
	}

	game := domain.NewGameState("sim_"+uuid.NewString()[:8], home, away, roster)
	if overrides != nil {
		if overrides.Quarter != nil {
			game.Quarter = *overrides.Quarter
		}
		if overrides.ClockSeconds != nil {
			game.ClockSeconds = *overrides.ClockSeconds
		}
	}
	return game
}

// Stop tears the current generation down and waits for its workers to
// exit. Stopping a stopped engine is signalled by ErrNotRunning.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return errors.ErrNotRunning
	}
	e.running = false
	supervisor := e.supervisor
	done := e.done
	e.mu.Unlock()

	supervisor.Stop()
	<-done
	e.log.Info("Engine stopped")
	return nil
}

// Reset stops the running generation, waits it out, and starts a fresh one.
// Identifiers, catalog and predictions of the old generation are never
// reused. Resets serialize behind resetMu: the clock's automatic reset and
// a client game_reset arriving together run one after the other.
func (e *Engine) Reset(ctx context.Context, overrides *domain.ResetOverrides) error {
	e.resetMu.Lock()
	defer e.resetMu.Unlock()

	if err := e.Stop(); err != nil && !errors.Is(err, errors.ErrNotRunning) {
		return err
	}
	e.monitoring.Reset()
	e.log.Info("Resetting game")
	if err := e.start(ctx, overrides); err != nil {
		if errors.Is(err, errors.ErrAlreadyRunning) {
			// A concurrent caller already brought a fresh game up.
			e.log.Info("Reset superseded by a concurrent start")
			return nil
		}
		return err
	}
	return nil
}

// onGameComplete is invoked by the clock worker from inside the worker
// generation. The reset must run outside of it: Stop waits for the
// supervisor, and a worker waiting for its own supervisor never returns.
func (e *Engine) onGameComplete() {
	e.mu.Lock()
	ctx := e.parentCtx
	e.mu.Unlock()

	go func() {
		if err := e.Reset(ctx, nil); err != nil {
			e.log.Error("Automatic reset failed", "error", err)
		}
	}()
}

// Tick burns one second off the clock and publishes the resulting snapshot.
// It returns true once the game has just completed.
func (e *Engine) Tick(ctx context.Context) bool {
	e.mu.Lock()
	if !e.running || e.game == nil || e.game.Status != domain.StatusInProgress {
		e.mu.Unlock()
		return false
	}
	complete := e.game.TickClock()
	snap := e.game.Snapshot()
	e.mu.Unlock()

	e.broadcaster.Broadcast(ctx, message.NewTick(snap))
	e.monitoring.TickPublished()
	if complete {
		e.log.Info("Game complete", "game_id", snap.GameID,
			"home_score", snap.HomeScore, "away_score", snap.AwayScore)
	}
	return complete
}

// PlayNext consumes the next catalog event, applies its score, and
// broadcasts the enriched live update. Enrichment is best effort: a failed
// prediction or explanation downgrades the update, never suppresses it.
// It returns false once the catalog is exhausted.
func (e *Engine) PlayNext(ctx context.Context) bool {
	e.mu.Lock()
	if !e.running || e.game == nil || e.game.Status != domain.StatusInProgress {
		e.mu.Unlock()
		return false
	}
	if e.game.EventCursor >= len(e.catalog) {
		e.mu.Unlock()
		e.log.Info("Event catalog exhausted", "error", errors.ErrCatalogExhausted)
		return false
	}
	evt := e.catalog[e.game.EventCursor]
	e.game.EventCursor++
	e.game.AddHomePoints(evt.Points())
	actor, found := e.game.FindPlayer(evt.ActorPlayerID)
	teamID := e.game.HomeTeam.ID
	snap := e.game.Snapshot()
	more := e.game.EventCursor < len(e.catalog)
	e.mu.Unlock()

	update := message.NewLiveUpdate(evt, snap)
	if !found {
		e.log.Warn("Event actor not on roster, sending bare update",
			"player_id", evt.ActorPlayerID, "error", errors.ErrUnknownPlayer)
	} else {
		if prediction, err := e.analytics.Predict(ctx, actor, teamID, nil); err != nil {
			e.log.Warn("Prediction failed, sending bare update", "player_id", actor.ID, "error", err)
		} else {
			ApplyImpact(&prediction, evt.Kind)
			update.UpdatedPrediction = &prediction
			update.ImpactAnalysis = evt.ImpactAnalysis()
			if explanation, err := e.explainer.Explain(prediction); err != nil {
				e.log.Warn("Explanation failed, sending prediction only", "player_id", actor.ID, "error", err)
			} else {
				update.Explanation = &explanation
			}
		}
	}

	e.log.Info("Event played", "type", evt.Kind, "description", evt.Description,
		"quarter", snap.Quarter, "score", fmt.Sprintf("%d-%d", snap.HomeScore, snap.AwayScore))
	e.broadcaster.Broadcast(ctx, update)
	e.monitoring.EventPlayed()
	return more
}

// predictBundles computes a prediction plus explanation for each player.
// A player whose prediction fails is skipped; a failed explanation ships
// the prediction alone.
func (e *Engine) predictBundles(ctx context.Context, players []domain.Player, teamID string, scenario *domain.ScenarioContext) []message.PredictionBundle {
	bundles := make([]message.PredictionBundle, 0, len(players))
	for _, player := range players {
		prediction, err := e.analytics.Predict(ctx, player, teamID, scenario)
		if err != nil {
			e.log.Warn("Prediction failed, skipping player", "player_id", player.ID, "error", err)
			continue
		}
		bundle := message.PredictionBundle{Prediction: prediction}
		if explanation, err := e.explainer.Explain(prediction); err != nil {
			e.log.Warn("Explanation failed, shipping bare prediction", "player_id", player.ID, "error", err)
		} else {
			bundle.Explanation = &explanation
		}
		bundles = append(bundles, bundle)
	}
	return bundles
}

// Running reports whether a game generation is currently live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// CurrentSnapshot returns the present game view, if any game exists.
func (e *Engine) CurrentSnapshot() (domain.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return domain.Snapshot{}, false
	}
	return e.game.Snapshot(), true
}

// Roster returns a copy of the current roster.
func (e *Engine) Roster() []domain.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return nil
	}
	return lo.Map(e.game.Roster, func(p domain.Player, _ int) domain.Player { return p })
}

// Progress reports how far playback has advanced through the catalog.
func (e *Engine) Progress() (played, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return 0, 0
	}
	return e.game.EventCursor, len(e.catalog)
}

// WelcomeMessage rebuilds the initialization payload a late subscriber
// receives on connect: the current snapshot with the opening predictions.
func (e *Engine) WelcomeMessage() (message.GameInitialized, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return message.GameInitialized{}, false
	}
	snap := e.game.Snapshot()
	return message.NewGameInitialized(snap, e.initialBundles,
		fmt.Sprintf("Joined live game: %s vs %s", snap.HomeTeam, snap.AwayTeam)), true
}

// PlayerContextFor assembles the explainer's view of one roster player,
// predictions included. Unknown identifiers return ErrUnknownPlayer.
func (e *Engine) PlayerContextFor(ctx context.Context, playerID string) (domain.PlayerContext, error) {
	e.mu.Lock()
	if e.game == nil {
		e.mu.Unlock()
		return domain.PlayerContext{}, errors.ErrNotRunning
	}
	player, found := e.game.FindPlayer(playerID)
	teamID := e.game.HomeTeam.ID
	e.mu.Unlock()

	if !found {
		return domain.PlayerContext{}, errors.ErrUnknownPlayer
	}
	prediction, err := e.analytics.Predict(ctx, player, teamID, nil)
	if err != nil {
		return domain.PlayerContext{
			PlayerName: player.FullName(),
			Position:   player.Position,
		}, nil
	}
	playerCtx := domain.PlayerContext{
		PlayerName:  prediction.PlayerName,
		Position:    prediction.Position,
		Predictions: prediction.Predictions,
	}
	if explanation, err := e.explainer.Explain(prediction); err == nil {
		playerCtx.Explanation = &explanation
	}
	return playerCtx, nil
}
