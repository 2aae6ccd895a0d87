package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/glass-shadow/internal/handler"
	"github.com/louisbranch/glass-shadow/internal/mission"
	"github.com/louisbranch/glass-shadow/internal/platform/timeouts"
)

// Config defines the inputs for the game transport boundary.
//
// Leaving ScenarioPath empty serves the built-in scenario; the handler
// settings are optional and degrade to canned lines without an API key.
type Config struct {
	HTTPAddr          string
	ScenarioPath      string
	HandlerAPIKey     string
	HandlerBaseURL    string
	HandlerModel      string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the game HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewHandler creates game routes over the built-in scenario for tests and
// offline paths.
func NewHandler() http.Handler {
	return newHandler(mission.GlassShadow(), handler.New(handler.Config{}))
}

func newHandler(scenario *mission.Scenario, assistant *handler.Assistant) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, scenario, assistant)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

// NewServer builds a configured game server and loads the scenario once so a
// broken script fails at startup instead of on the first connection.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	scenario := mission.GlassShadow()
	if path := strings.TrimSpace(config.ScenarioPath); path != "" {
		loaded, err := mission.LoadScript(path)
		if err != nil {
			return nil, fmt.Errorf("load scenario %s: %w", path, err)
		}
		scenario = loaded
	}

	assistant := handler.New(handler.Config{
		APIKey:  config.HandlerAPIKey,
		BaseURL: config.HandlerBaseURL,
		Model:   config.HandlerModel,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           newHandler(scenario, assistant),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
	}, nil
}

// Run creates and serves a game server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init game server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve game: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("game server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("game server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
}
