// Package config loads process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the game server configuration.
type Server struct {
	// Transport selects the MCP transport: "stdio" or "http".
	Transport string `env:"SYNTHESIS_GARDEN_TRANSPORT" envDefault:"stdio"`
	// HTTPAddr is the bind address for the HTTP transport.
	HTTPAddr string `env:"SYNTHESIS_GARDEN_HTTP_ADDR" envDefault:"localhost:8081"`
	// RecipesPath points at a JSON recipe table. Empty selects the
	// embedded starter table.
	RecipesPath string `env:"SYNTHESIS_GARDEN_RECIPES_PATH"`
	// PlateauWindow is the no-discovery window used by session summaries.
	PlateauWindow int `env:"SYNTHESIS_GARDEN_PLATEAU_WINDOW" envDefault:"5"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseServer loads the server configuration from the environment.
func ParseServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}
