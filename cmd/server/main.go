package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"seetheplay/analytics"
	"seetheplay/datasource"
	"seetheplay/explainer"
	"seetheplay/infrastructure/ws"
	"seetheplay/internal"
	"seetheplay/observability"
	"seetheplay/runtime"
	"seetheplay/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups execute before the process exits, and the entry point stays testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Collaborators
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	monitoring := observability.NewMonitoringManager()
	pulse := datasource.NewPulseClient(logger, config.PulseBaseURL, nil)
	predictor := analytics.NewEngine(logger, pulse, rng)

	var gpt *explainer.OpenAIClient
	if config.OpenAIKey != "" {
		gpt = explainer.NewOpenAIClient(logger, config.OpenAIKey, config.OpenAIURL, config.OpenAIModel, nil)
		logger.Info("OpenAI explainer enabled", "model", config.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, questions use pattern answers")
	}
	narrator := explainer.New(logger, gpt)

	// 4. Engine & Broadcast
	broadcaster := runtime.NewBroadcaster(logger, config.SendTimeout, monitoring)
	engine := runtime.NewEngine(logger, runtime.EngineConfig{
		TeamName:        config.TeamName,
		RosterSize:      config.RosterSize,
		InitialPlayers:  config.InitialPlayers,
		TickInterval:    config.TickInterval,
		EventMinDelay:   config.EventMinDelay,
		EventMaxDelay:   config.EventMaxDelay,
		RestartInterval: config.RestartInterval,
		MetricInterval:  config.MetricInterval,
	}, pulse, predictor, narrator, broadcaster, monitoring, rng)
	scenarios := runtime.NewScenarioHandler(logger, engine)

	if err := engine.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("engine start failed: %w", err)
	}

	// 5. HTTP & WebSocket surface
	mux := http.NewServeMux()
	wsServer := ws.NewServer(logger, ctx, engine, scenarios, broadcaster, narrator, config.SendTimeout)
	mux.HandleFunc("/ws", wsServer.HandleWS)
	services.NewLiveService(logger, ctx, engine, broadcaster, monitoring).Register(mux)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = engine.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}
