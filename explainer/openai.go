package explainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seetheplay/domain"
)

const (
	defaultMaxTokens   = 300
	defaultTemperature = 0.3
)

// OpenAIClient calls the chat completions API to answer prediction
// questions conversationally. The endpoint URL is configurable so tests can
// point it at a local server.
type OpenAIClient struct {
	log    *slog.Logger
	apiKey string
	url    string
	model  string
	client *http.Client
}

func NewOpenAIClient(log *slog.Logger, apiKey, url, model string, client *http.Client) *OpenAIClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &OpenAIClient{log: log, apiKey: apiKey, url: url, model: model, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Ask sends the question with the player's prediction context as the system
// prompt and returns the model's reply.
func (c *OpenAIClient) Ask(ctx context.Context, question string, player domain.PlayerContext) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(player)},
			{Role: "user", Content: question},
		},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("chat error: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response without choices")
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

// systemPrompt formats the player's predictions into the assistant context.
// The instructions ask for a concise answer with cited numbers and no
// internal reasoning.
func systemPrompt(player domain.PlayerContext) string {
	var b strings.Builder
	b.WriteString("You are an assistant that explains sports predictions.\n\n")
	fmt.Fprintf(&b, "Player: %s (%s)\n\nPredictions:\n", player.PlayerName, player.Position)

	for _, stat := range domain.Stats {
		line := player.Predictions[stat]
		if line == nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: %.1f (confidence: %.0f%%, over probability: %.0f%%)\n",
			strings.ReplaceAll(string(stat), "_", " "),
			line.PredictedValue, line.Confidence*100, line.ProbabilityOver*100)
	}

	if player.Explanation != nil && player.Explanation.OverallSummary != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", player.Explanation.OverallSummary)
	}

	b.WriteString(`
Instructions:
- Provide a concise answer to the user's question (1-3 sentences) followed by a short explanation of the key factors and numeric evidence supporting it.
- Do NOT reveal internal chain-of-thought or step-by-step deliberation.
- When possible, cite specific numbers from the provided prediction data.
- If the question asks about stats not present in the data, state what is missing and offer a best-effort, clearly-labeled estimate.
- Keep answers friendly and concise.`)
	return b.String()
}
