// Package handler is the operative's radio link to their handler. When an
// OpenAI-compatible endpoint is configured the reply comes from the model;
// otherwise, or on any API failure, a deterministic canned response keeps
// the link alive.
package handler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/louisbranch/glass-shadow/internal/session"
	"github.com/louisbranch/glass-shadow/internal/stress"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 15 * time.Second
	// historyWindow bounds how much chat history rides along on each call.
	historyWindow = 6
)

// Config configures the assistant link. An empty APIKey disables the API
// entirely; every reply then comes from the fallback.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant produces handler replies for converse requests.
type Assistant struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New builds an Assistant. Without an API key the assistant still works,
// answering from the fallback table.
func New(cfg Config) *Assistant {
	a := &Assistant{
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if a.model == "" {
		a.model = defaultModel
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if cfg.APIKey == "" {
		return a
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	a.client = openai.NewClientWithConfig(config)
	return a
}

// Converse answers one operative message in character. It never returns an
// error: API failures degrade to the fallback reply.
func (a *Assistant) Converse(ctx context.Context, snap session.Snapshot, history []Message, message string) string {
	if a.client == nil {
		return a.fallback(snap, message)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(snap)},
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		log.Printf("handler api call failed, using fallback: %v", err)
		return a.fallback(snap, message)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return a.fallback(snap, message)
	}
	return resp.Choices[0].Message.Content
}

func systemPrompt(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are SLOANE, a terse field handler guiding an operative ")
	b.WriteString("codenamed Grey through a covert infiltration over radio. ")
	b.WriteString("Stay in character. Two sentences at most. No pleasantries.\n\n")
	fmt.Fprintf(&b, "Operation phase: %s\n", snap.Phase)
	fmt.Fprintf(&b, "Cover: %d%% (%s). Heat: %d%% (%s). Stress: %d bpm (%s).\n",
		snap.Resources.Cover, snap.CoverLabel,
		snap.Resources.Heat, snap.HeatLabel,
		snap.Resources.Stress, snap.StressBand)
	if snap.Room != nil {
		fmt.Fprintf(&b, "Operative location: %s. %s\n", snap.Room.Name, snap.Room.Narrative)
	}
	if len(snap.Intel) > 0 {
		fmt.Fprintf(&b, "Known intel: %s\n", strings.Join(snap.Intel, "; "))
	}
	if len(snap.Objectives) > 0 {
		fmt.Fprintf(&b, "Objectives secured: %s\n", strings.Join(snap.Objectives, "; "))
	}
	return b.String()
}

// snarkLines answer anything the keyword table does not cover.
var snarkLines = []string{
	"I'm your handler, not therapist.",
	"Save it for debrief.",
	"Focus, Grey.",
}

// fallback answers from a keyword table using only session state, so
// replies are stable for a given message and snapshot.
func (a *Assistant) fallback(snap session.Snapshot, message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "status"):
		return "Making progress. Stay focused."
	case strings.Contains(lower, "advice"):
		if snap.Resources.Heat > 50 {
			return "Lay low. Let heat die down."
		}
		return "Room to operate. Trust your gut."
	case strings.Contains(lower, "intel"):
		if len(snap.Intel) > 0 {
			return "Latest: " + snap.Intel[len(snap.Intel)-1]
		}
		return "Nothing new."
	case strings.Contains(lower, "moment"), strings.Contains(lower, "breathe"):
		if stress.EffectsFor(snap.Resources.Stress).Corruption > 0.1 {
			return "Easy. Breathe. Not rushed yet."
		}
		return "You're solid."
	default:
		return snarkLines[len(message)%len(snarkLines)]
	}
}
