package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"seetheplay/contract"
	"seetheplay/domain"
	"seetheplay/message"
	"seetheplay/runtime"
)

// Server owns the /ws endpoint. Each accepted connection becomes a
// broadcast subscriber and gets its own read loop for client commands.
type Server struct {
	log         *slog.Logger
	appCtx      context.Context
	engine      *runtime.Engine
	scenarios   *runtime.ScenarioHandler
	broadcaster *runtime.Broadcaster
	explainer   contract.Explainer
	validate    *validator.Validate
	upgrader    websocket.Upgrader
	sendTimeout time.Duration
}

// NewServer wires the WebSocket edge. appCtx outlives individual
// connections; resets triggered by a client keep running after that client
// disconnects.
func NewServer(
	log *slog.Logger,
	appCtx context.Context,
	engine *runtime.Engine,
	scenarios *runtime.ScenarioHandler,
	broadcaster *runtime.Broadcaster,
	explainer contract.Explainer,
	sendTimeout time.Duration,
) *Server {
	return &Server{
		log:         log,
		appCtx:      appCtx,
		engine:      engine,
		scenarios:   scenarios,
		broadcaster: broadcaster,
		explainer:   explainer,
		validate:    validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Demo surface, any origin may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sendTimeout: sendTimeout,
	}
}

// HandleWS upgrades the connection, replays the initialization payload and
// runs the read loop until the client goes away.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	sub := NewSubscriber(conn)
	defer func() { _ = sub.Close() }()

	// The welcome goes out before the subscriber joins the registry, so a
	// client never sees a tick ahead of its game_initialized.
	if welcome, ok := s.engine.WelcomeMessage(); ok {
		if err := s.sendDirect(sub, welcome); err != nil {
			s.log.Warn("Welcome delivery failed", "id", sub.ID(), "error", err)
			return
		}
	}

	s.broadcaster.Register(sub)
	defer s.broadcaster.Unregister(sub.ID())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("WebSocket read failed", "id", sub.ID(), "error", err)
			}
			return
		}
		s.route(sub, raw)
	}
}

// route dispatches one inbound frame. A malformed or unknown frame is
// logged and dropped; it never tears the connection down.
func (s *Server) route(sub *Subscriber, raw []byte) {
	var inbound message.Inbound
	if err := json.Unmarshal(raw, &inbound); err != nil {
		s.log.Warn("Discarding malformed frame", "id", sub.ID(), "error", err)
		return
	}

	switch inbound.Type {
	case message.TypeScenarioChange:
		s.handleScenario(sub, inbound.Data)
	case message.TypeGameReset:
		s.handleReset(sub, inbound.Data)
	case message.TypeCedarQuestion:
		s.handleQuestion(sub, inbound, message.TypeCedarAnswer)
	case message.TypeChatGPTQuestion:
		s.handleQuestion(sub, inbound, message.TypeChatGPTAnswer)
	default:
		s.log.Warn("Discarding unknown message type", "id", sub.ID(), "type", inbound.Type)
	}
}

func (s *Server) handleScenario(sub *Subscriber, data json.RawMessage) {
	var change message.ScenarioChange
	if err := json.Unmarshal(data, &change); err != nil {
		s.log.Warn("Invalid scenario payload", "id", sub.ID(), "error", err)
		return
	}
	if err := s.validate.Struct(change); err != nil {
		s.log.Warn("Scenario payload failed validation", "id", sub.ID(), "error", err)
		return
	}
	if _, err := s.scenarios.Apply(s.appCtx, change); err != nil {
		s.log.Warn("Scenario application failed", "id", sub.ID(), "error", err)
	}
}

func (s *Server) handleReset(sub *Subscriber, data json.RawMessage) {
	var overrides *domain.ResetOverrides
	if len(data) > 0 {
		overrides = &domain.ResetOverrides{}
		if err := json.Unmarshal(data, overrides); err != nil {
			s.log.Warn("Invalid reset payload", "id", sub.ID(), "error", err)
			return
		}
		if err := s.validate.Struct(overrides); err != nil {
			s.log.Warn("Reset payload failed validation", "id", sub.ID(), "error", err)
			return
		}
	}

	// The reset outlives this connection's read loop.
	go func() {
		if err := s.engine.Reset(s.appCtx, overrides); err != nil {
			s.log.Error("Client-triggered reset failed", "error", err)
		}
	}()
}

// handleQuestion answers a single subscriber; the reply is never broadcast.
func (s *Server) handleQuestion(sub *Subscriber, inbound message.Inbound, answerType string) {
	ctx, cancel := context.WithTimeout(s.appCtx, 20*time.Second)
	defer cancel()

	playerCtx, err := s.engine.PlayerContextFor(ctx, inbound.PlayerID)
	if err != nil {
		s.log.Warn("Question for unknown player", "id", sub.ID(), "player_id", inbound.PlayerID, "error", err)
		reply := message.NewAnswer(answerType, inbound.Question,
			"I don't have predictions for that player. Pick a player from the current roster.", inbound.PlayerID)
		_ = s.sendDirect(sub, reply)
		return
	}

	answer, err := s.explainer.Answer(ctx, inbound.Question, playerCtx)
	if err != nil {
		s.log.Warn("Answer generation failed", "id", sub.ID(), "error", err)
		answer = "I'm having trouble answering right now. Try asking about specific stats like 'passing yards' or 'confidence levels'."
	}
	_ = s.sendDirect(sub, message.NewAnswer(answerType, inbound.Question, answer, inbound.PlayerID))
}

func (s *Server) sendDirect(sub *Subscriber, msg message.Outbound) error {
	ctx, cancel := context.WithTimeout(s.appCtx, s.sendTimeout)
	defer cancel()
	return sub.Send(ctx, msg)
}
