package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/glass-shadow/internal/challenge"
	"github.com/louisbranch/glass-shadow/internal/handler"
	"github.com/louisbranch/glass-shadow/internal/mission"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
	"github.com/louisbranch/glass-shadow/internal/platform/id"
	"github.com/louisbranch/glass-shadow/internal/session"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	maxConverseRunes     = 500
	converseHistoryLimit = 20

	surveillancePeriod = 400 * time.Millisecond
	stressDecayPeriod  = 3 * time.Second
)

var tracer = otel.Tracer("github.com/louisbranch/glass-shadow/internal/services/game/app")

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type stateEnvelope struct {
	State session.Snapshot `json:"state"`
}

type handlerEnvelope struct {
	Message string `json:"message"`
}

type helloEnvelope struct {
	SessionID  string `json:"session_id"`
	ServerTime string `json:"server_time"`
}

type inventoryEnvelope struct {
	Items []challenge.Item `json:"items"`
}

type movePayload struct {
	RoomID string `json:"room_id"`
}

type challengePayload struct {
	ChallengeID string `json:"challenge_id"`
}

type conversePayload struct {
	Message string `json:"message"`
}

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// playerConn binds one websocket connection to one session. All session
// access goes through mu; the tickers and the converse goroutine share it
// with the frame loop.
type playerConn struct {
	mu        sync.Mutex
	sess      *session.Controller
	peer      *wsPeer
	assistant *handler.Assistant
	history   []handler.Message
}

func handleWSConn(conn *websocket.Conn, scenario *mission.Scenario, assistant *handler.Assistant) {
	defer func() {
		_ = conn.Close()
	}()

	peer := newWSPeer(json.NewEncoder(conn))
	sessionID, err := id.NewID()
	if err != nil {
		log.Printf("game: session id generation failed: %v", err)
		_ = writeWSError(peer, "", apperrors.CodeUnknown, "session unavailable")
		return
	}
	sess, err := session.New(scenario, session.Options{})
	if err != nil {
		log.Printf("game: session %s init failed: %v", sessionID, err)
		_ = writeWSError(peer, "", apperrors.CodeOf(err), "session unavailable")
		return
	}
	player := &playerConn{
		sess:      sess,
		peer:      peer,
		assistant: assistant,
	}

	_ = peer.writeFrame(wsFrame{
		Type: "game.hello",
		Payload: mustJSON(helloEnvelope{
			SessionID:  sessionID,
			ServerTime: time.Now().UTC().Format(time.RFC3339),
		}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go player.runTickers(ctx)

	decoder := json.NewDecoder(conn)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "", apperrors.CodeChallengeInvalidInput, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(peer, frame.RequestID, apperrors.CodeUnknown, "rate limit exceeded")
			return
		}

		frameCtx, span := tracer.Start(ctx, "game.frame",
			trace.WithAttributes(attribute.String("frame.type", frame.Type)))
		player.dispatch(frameCtx, frame)
		span.End()
	}
}

func (p *playerConn) dispatch(ctx context.Context, frame wsFrame) {
	switch frame.Type {
	case "game.begin":
		p.withSession(frame, func() error { return p.sess.Begin() })
	case "game.restart":
		p.withSession(frame, func() error { return p.sess.Restart() })
	case "game.move":
		p.handleMove(frame)
	case "game.challenge.start":
		p.handleChallengeStart(frame)
	case "game.challenge.back":
		p.withSession(frame, func() error { return p.sess.BackOut() })
	case "game.act":
		p.handleAct(frame)
	case "game.wait":
		p.withSession(frame, func() error { return p.sess.Wait() })
	case "game.look":
		p.withSession(frame, func() error { return p.sess.Look() })
	case "game.state":
		p.mu.Lock()
		snap := p.sess.Snapshot()
		p.mu.Unlock()
		p.pushState(frame.RequestID, snap)
	case "game.inventory":
		p.mu.Lock()
		items := p.sess.Inventory()
		p.mu.Unlock()
		_ = p.peer.writeFrame(wsFrame{
			Type:      "game.inventory",
			RequestID: frame.RequestID,
			Payload:   mustJSON(inventoryEnvelope{Items: items}),
		})
	case "game.converse":
		p.handleConverse(ctx, frame)
	default:
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "unsupported frame type")
	}
}

// withSession runs a session mutation and answers with either the updated
// snapshot or the mapped error code.
func (p *playerConn) withSession(frame wsFrame, op func() error) {
	p.mu.Lock()
	err := op()
	var snap session.Snapshot
	if err == nil {
		snap = p.sess.Snapshot()
	}
	p.mu.Unlock()

	if err != nil {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeOf(err), err.Error())
		return
	}
	p.pushState(frame.RequestID, snap)
}

func (p *playerConn) handleMove(frame wsFrame) {
	var payload movePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "invalid move payload")
		return
	}

	p.mu.Lock()
	ok, err := p.sess.Move(payload.RoomID)
	var snap session.Snapshot
	if err == nil && ok {
		snap = p.sess.Snapshot()
	}
	p.mu.Unlock()

	if err != nil {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeOf(err), err.Error())
		return
	}
	if !ok {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeMissionMoveRejected, "no route to room")
		return
	}
	p.pushState(frame.RequestID, snap)
}

func (p *playerConn) handleChallengeStart(frame wsFrame) {
	var payload challengePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "invalid challenge payload")
		return
	}
	p.withSession(frame, func() error { return p.sess.StartChallenge(payload.ChallengeID) })
}

func (p *playerConn) handleAct(frame wsFrame) {
	var input challenge.Input
	if err := json.Unmarshal(frame.Payload, &input); err != nil {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "invalid action payload")
		return
	}
	p.withSession(frame, func() error { return p.sess.ChallengeAction(input) })
}

func (p *playerConn) handleConverse(ctx context.Context, frame wsFrame) {
	var payload conversePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "invalid converse payload")
		return
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "message is required")
		return
	}
	if utf8.RuneCountInString(message) > maxConverseRunes {
		_ = writeWSError(p.peer, frame.RequestID, apperrors.CodeChallengeInvalidInput, "message must be at most 500 characters")
		return
	}

	p.mu.Lock()
	snap := p.sess.Snapshot()
	history := append([]handler.Message(nil), p.history...)
	p.mu.Unlock()

	// Model latency stays off the frame loop; the lock is only retaken to
	// record the exchange.
	go func() {
		reply := p.assistant.Converse(ctx, snap, history, message)

		p.mu.Lock()
		p.history = append(p.history,
			handler.Message{Role: "user", Content: message},
			handler.Message{Role: "assistant", Content: reply},
		)
		if len(p.history) > converseHistoryLimit {
			p.history = p.history[len(p.history)-converseHistoryLimit:]
		}
		p.mu.Unlock()

		_ = p.peer.writeFrame(wsFrame{
			Type:      "game.handler",
			RequestID: frame.RequestID,
			Payload:   mustJSON(handlerEnvelope{Message: reply}),
		})
	}()
}

func (p *playerConn) runTickers(ctx context.Context) {
	surveillance := time.NewTicker(surveillancePeriod)
	defer surveillance.Stop()
	decay := time.NewTicker(stressDecayPeriod)
	defer decay.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-surveillance.C:
			p.mu.Lock()
			p.sess.TickSurveillance()
			snap := p.sess.Snapshot()
			p.mu.Unlock()
			// Patrol motion is only worth a push while a camera view is up.
			if snap.Challenge != nil && snap.Challenge.Surveillance != nil {
				p.pushState("", snap)
			}
		case <-decay.C:
			p.mu.Lock()
			p.sess.TickStressDecay()
			snap := p.sess.Snapshot()
			p.mu.Unlock()
			if snap.Phase == session.PhaseActive {
				p.pushState("", snap)
			}
		}
	}
}

func (p *playerConn) pushState(requestID string, snap session.Snapshot) {
	_ = p.peer.writeFrame(wsFrame{
		Type:      "game.state",
		RequestID: requestID,
		Payload:   mustJSON(stateEnvelope{State: snap}),
	})
}

func writeWSError(peer *wsPeer, requestID string, code apperrors.Code, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "game.error",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:    string(code),
				Message: message,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}
