// Package game parses game command flags and starts the websocket runtime.
package game

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/glass-shadow/internal/platform/cmd"
	server "github.com/louisbranch/glass-shadow/internal/services/game/app"
)

// Config holds game command configuration.
type Config struct {
	HTTPAddr       string `env:"GLASS_SHADOW_GAME_HTTP_ADDR"     envDefault:":8082"`
	ScenarioPath   string `env:"GLASS_SHADOW_SCENARIO_FILE"`
	HandlerAPIKey  string `env:"GLASS_SHADOW_HANDLER_API_KEY"`
	HandlerBaseURL string `env:"GLASS_SHADOW_HANDLER_BASE_URL"`
	HandlerModel   string `env:"GLASS_SHADOW_HANDLER_MODEL"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "game HTTP listen address")
	fs.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "path to scenario lua file (empty serves the built-in mission)")
	fs.StringVar(&cfg.HandlerAPIKey, "handler-api-key", cfg.HandlerAPIKey, "handler model API key")
	fs.StringVar(&cfg.HandlerBaseURL, "handler-base-url", cfg.HandlerBaseURL, "handler model base URL override")
	fs.StringVar(&cfg.HandlerModel, "handler-model", cfg.HandlerModel, "handler model name")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the game app and serves sessions until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:       cfg.HTTPAddr,
			ScenarioPath:   cfg.ScenarioPath,
			HandlerAPIKey:  cfg.HandlerAPIKey,
			HandlerBaseURL: cfg.HandlerBaseURL,
			HandlerModel:   cfg.HandlerModel,
		}); err != nil {
			return fmt.Errorf("serve game: %w", err)
		}
		return nil
	})
}
