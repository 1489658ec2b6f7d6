package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/summary"
)

// Recomputer runs a full summary recompute.
type Recomputer interface {
	Recompute(ctx context.Context) (*summary.Result, error)
}

// SummaryService defines the summary maintenance operations needed by MCP.
type SummaryService interface {
	Rules() summary.Rules
	ClearSummaryField(ctx context.Context, name string) error
}

// BoardService defines the board lookups needed by MCP.
type BoardService interface {
	ResolveFieldID(ctx context.Context, name string) (string, bool, error)
	ListCustomFields(ctx context.Context) ([]board.CustomField, error)
	ClearCache() (lists, fields int)
}

// Services contains all domain services needed by MCP.
type Services struct {
	// Recomputer may be the coalescing wrapper around Summary.
	Recomputer Recomputer
	Summary    SummaryService
	Board      BoardService
}

// Config contains server configuration.
type Config struct {
	Services Services
	// Token is the bearer token required on HTTP requests. Empty disables
	// auth.
	Token         string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "boardsum",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server, cfg.Services.Summary)

	// Stdio is local, so auth only applies over HTTP
	if cfg.TransportMode != "stdio" && cfg.Token != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.Token))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
