// Package server parses the game server flags and wires the recipe
// book, store, and game service into the MCP transport.
package server

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/core/recipe"
	gameservice "github.com/louisbranch/synthesis.garden/internal/game/service"
	mcpservice "github.com/louisbranch/synthesis.garden/internal/mcp/service"
	"github.com/louisbranch/synthesis.garden/internal/platform/config"
	"github.com/louisbranch/synthesis.garden/internal/platform/otel"
	"github.com/louisbranch/synthesis.garden/internal/storage/memory"
)

// ParseConfig parses environment and flags into a server config.
func ParseConfig(fs *flag.FlagSet, args []string) (config.Server, error) {
	cfg, err := config.ParseServer()
	if err != nil {
		return config.Server{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "MCP transport: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.RecipesPath, "recipes", cfg.RecipesPath, "path to a JSON recipe table (empty for the embedded starter table)")
	fs.IntVar(&cfg.PlateauWindow, "plateau-window", cfg.PlateauWindow, "no-discovery window used by session summaries")
	if err := fs.Parse(args); err != nil {
		return config.Server{}, err
	}
	return cfg, nil
}

// Run starts the game server and blocks until the context ends.
func Run(ctx context.Context, cfg config.Server) error {
	shutdown, err := otel.Setup(ctx, "server")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	book, err := loadBook(cfg.RecipesPath)
	if err != nil {
		return err
	}
	log.Printf("recipe book loaded recipes=%d elements=%d", book.Len(), len(book.Vocabulary()))

	game := gameservice.New(book, memory.New(), gameservice.Options{
		PlateauWindow: cfg.PlateauWindow,
	})

	return mcpservice.Run(ctx, game, mcpservice.Config{
		Transport: mcpservice.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
	})
}

// loadBook selects the recipe table from disk or the embedded starter.
func loadBook(path string) (*recipe.Book, error) {
	if path == "" {
		return recipe.Starter()
	}
	return recipe.LoadFile(path)
}
