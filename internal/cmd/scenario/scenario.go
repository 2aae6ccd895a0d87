// Package scenario parses scenario lint flags and validates mission scripts.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	"github.com/louisbranch/glass-shadow/internal/mission"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario string `env:"GLASS_SHADOW_SCENARIO_FILE"`
	Verbose  bool   `env:"GLASS_SHADOW_SCENARIO_VERBOSE"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "print per-room detail")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the script, rejects invalid missions, and prints a summary.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if cfg.Scenario == "" {
		return errors.New("scenario file is required")
	}

	scenario, err := mission.LoadScript(cfg.Scenario)
	if err != nil {
		fmt.Fprintf(errOut, "invalid scenario: %v\n", err)
		return err
	}

	graph, err := scenario.Graph()
	if err != nil {
		fmt.Fprintf(errOut, "invalid graph: %v\n", err)
		return err
	}

	rooms := graph.Rooms()
	challenges := 0
	for _, room := range rooms {
		challenges += len(room.Challenges)
	}
	fmt.Fprintf(out, "%s: %d rooms, %d challenges, start at %s\n",
		scenario.Dossier.Codename, len(rooms), challenges, graph.Start())

	if cfg.Verbose {
		for _, room := range rooms {
			fmt.Fprintf(out, "  %s (%s) exits=%v challenges=%d\n",
				room.ID, room.Visibility, room.Exits, len(room.Challenges))
		}
	}
	return nil
}
