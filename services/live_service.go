// Package services exposes the HTTP control surface: lifecycle commands,
// live status and diagnostics.
package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"seetheplay/domain"
	"seetheplay/errors"
	"seetheplay/observability"
	"seetheplay/runtime"
)

type LiveService struct {
	log         *slog.Logger
	appCtx      context.Context
	engine      *runtime.Engine
	broadcaster *runtime.Broadcaster
	monitoring  *observability.MonitoringManager
}

func NewLiveService(
	log *slog.Logger,
	appCtx context.Context,
	engine *runtime.Engine,
	broadcaster *runtime.Broadcaster,
	monitoring *observability.MonitoringManager,
) *LiveService {
	return &LiveService{
		log:         log,
		appCtx:      appCtx,
		engine:      engine,
		broadcaster: broadcaster,
		monitoring:  monitoring,
	}
}

// Register mounts every control route on the mux.
func (s *LiveService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/live/start", s.handleStart)
	mux.HandleFunc("POST /api/live/stop", s.handleStop)
	mux.HandleFunc("POST /api/live/reset", s.handleReset)
	mux.HandleFunc("GET /api/live/status", s.handleStatus)
	mux.HandleFunc("GET /api/live/roster", s.handleRoster)
	mux.HandleFunc("GET /api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *LiveService) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Start(s.appCtx); err != nil {
		if errors.Is(err, errors.ErrAlreadyRunning) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
			return
		}
		s.log.Error("Start failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *LiveService) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(); err != nil {
		if errors.Is(err, errors.ErrNotRunning) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
			return
		}
		s.log.Error("Stop failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *LiveService) handleReset(w http.ResponseWriter, r *http.Request) {
	var overrides *domain.ResetOverrides
	if r.ContentLength > 0 {
		overrides = &domain.ResetOverrides{}
		if err := json.NewDecoder(r.Body).Decode(overrides); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reset payload"})
			return
		}
	}
	if err := s.engine.Reset(s.appCtx, overrides); err != nil {
		s.log.Error("Reset failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *LiveService) handleStatus(w http.ResponseWriter, r *http.Request) {
	played, total := s.engine.Progress()
	status := map[string]any{
		"running":           s.engine.Running(),
		"connected_clients": s.broadcaster.Count(),
		"events_played":     played,
		"events_total":      total,
	}
	if snap, ok := s.engine.CurrentSnapshot(); ok {
		status["game"] = snap
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *LiveService) handleRoster(w http.ResponseWriter, r *http.Request) {
	roster := s.engine.Roster()
	if roster == nil {
		writeJSON(w, http.StatusOK, []domain.Player{})
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *LiveService) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitoring.GetLatest())
}

func (s *LiveService) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
