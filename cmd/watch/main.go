package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"seetheplay/domain"
	"seetheplay/domain/event"
	"seetheplay/internal"
	"seetheplay/message"
)

// watch is a terminal client for the live feed: it subscribes to the
// WebSocket endpoint and renders ticks, plays and predictions as they land.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	endpoint := fmt.Sprintf("ws://%s:%d/ws", config.Host, config.Port)
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", endpoint, err)
	}
	defer conn.Close()

	color.Cyanln("📺 Watching live feed at", endpoint)

	// 2. Close cleanly on Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		os.Exit(0)
	}()

	// 3. Render loop
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Connection lost: %v", err)
		}
		render(raw)
	}
}

func render(raw []byte) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}

	switch envelope.Type {
	case message.TypeGameInitialized:
		var msg message.GameInitialized
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		color.Greenln("\n🏈", msg.Message)
		renderPredictions(msg.InitialPredictions)
	case message.TypeLiveUpdate:
		var msg message.LiveUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		renderEvent(msg)
	case message.TypeTick:
		var msg message.Tick
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		fmt.Printf("\r⏱  Q%d %s  %s %d - %d %s   ",
			msg.GameState.Quarter, msg.GameState.TimeRemaining,
			msg.GameState.HomeTeam, msg.GameState.HomeScore,
			msg.GameState.AwayScore, msg.GameState.AwayTeam)
	case message.TypeScenarioUpdate:
		var msg message.ScenarioUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		color.Magentaln("\n🔮 Scenario:", msg.Scenario.Description)
		renderPredictions(msg.UpdatedPredictions)
	}
}

func renderEvent(msg message.LiveUpdate) {
	line := fmt.Sprintf("\nQ%d  %s  (%s %d - %d %s)",
		msg.GameState.Quarter, msg.Event.Description,
		msg.GameState.HomeTeam, msg.GameState.HomeScore,
		msg.GameState.AwayScore, msg.GameState.AwayTeam)

	switch {
	case msg.Event.Kind == event.Touchdown:
		color.Bold.Println(color.Green.Sprint(line))
	case msg.Event.Kind == event.FieldGoal:
		color.Greenln(line)
	case msg.Event.IsTurnover:
		color.Redln(line)
	default:
		fmt.Println(line)
	}

	if msg.ImpactAnalysis != "" {
		color.Grayln("   " + msg.ImpactAnalysis)
	}
}

func renderPredictions(bundles []message.PredictionBundle) {
	if len(bundles) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Player", "Pos", "Pass Yds", "Rush Yds", "Rec Yds", "TD", "INT"})
	for _, bundle := range bundles {
		p := bundle.Prediction
		table.Append([]string{
			p.PlayerName,
			p.Position,
			statCell(p.Predictions[domain.StatPassingYards]),
			statCell(p.Predictions[domain.StatRushingYards]),
			statCell(p.Predictions[domain.StatReceivingYards]),
			statCell(p.Predictions[domain.StatTouchdowns]),
			statCell(p.Predictions[domain.StatInterceptions]),
		})
	}
	table.Render()
}

func statCell(line *domain.StatLine) string {
	if line == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f (%.0f%%)", line.PredictedValue, line.Confidence*100)
}
