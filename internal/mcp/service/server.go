// Package service hosts the MCP server for the crafting game and its
// transports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/synthesis.garden/internal/game/service"
	"github.com/louisbranch/synthesis.garden/internal/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "synthesis.garden"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the bind address for the HTTP transport. Defaults to
	// localhost:8081; keep it loopback-only unless fronted by a proxy.
	HTTPAddr string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server over the game service.
func New(game *service.GameService) (*Server, error) {
	if game == nil {
		return nil, fmt.Errorf("game service is not configured")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	registerGameTools(mcpServer, game)
	registerLogTools(mcpServer, game)
	registerResources(mcpServer, game)

	return &Server{mcpServer: mcpServer}, nil
}

func registerGameTools(mcpServer *mcp.Server, game *service.GameService) {
	mcp.AddTool(mcpServer, domain.StartGameTool(), domain.StartGameHandler(game))
	mcp.AddTool(mcpServer, domain.CombineTool(), domain.CombineHandler(game))
	mcp.AddTool(mcpServer, domain.GameStateTool(), domain.GameStateHandler(game))
	mcp.AddTool(mcpServer, domain.EndGameTool(), domain.EndGameHandler(game))
}

func registerLogTools(mcpServer *mcp.Server, game *service.GameService) {
	mcp.AddTool(mcpServer, domain.ListSessionsTool(), domain.ListSessionsHandler(game))
	mcp.AddTool(mcpServer, domain.AttemptLogTool(), domain.AttemptLogHandler(game))
	mcp.AddTool(mcpServer, domain.SessionLogTool(), domain.SessionLogHandler(game))
}

// registerResources registers the readable game resources.
func registerResources(mcpServer *mcp.Server, game *service.GameService) {
	mcpServer.AddResource(domain.RulesResource(), domain.RulesResourceHandler())
	mcpServer.AddResource(domain.RecipesResource(), domain.RecipesResourceHandler(game.Book()))
}

// Run creates and serves the MCP server until the context ends.
func Run(ctx context.Context, game *service.GameService, cfg Config) error {
	server, err := New(game)
	if err != nil {
		return err
	}

	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.Serve(ctx)
	case TransportHTTP:
		return server.ServeHTTP(ctx, cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeHTTP serves MCP over streamable HTTP and blocks until the
// context ends.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if addr == "" {
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	httpServer := &http.Server{Addr: addr, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Printf("mcp http server listening addr=%s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
