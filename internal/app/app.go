// Package app wires configuration into a running service: board store,
// domain services, notifier, MCP server and HTTP router.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/boardsum/internal/cache"
	"github.com/rpggio/boardsum/internal/config"
	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/event"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/mcp"
	"github.com/rpggio/boardsum/internal/notify"
	"github.com/rpggio/boardsum/internal/sqlite"
	"github.com/rpggio/boardsum/internal/transport"
	"github.com/rpggio/boardsum/internal/trello"
)

// Version is reported by the MCP server.
var Version = "dev"

// Options overrides parts of the wiring, mainly for tests.
type Options struct {
	// Mailer replaces the mailer chosen from the email config.
	Mailer notify.Mailer
	// Store replaces the store chosen from the board DSN.
	Store board.Store
}

// App holds the wired services.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Store      board.Store
	Board      *board.Service
	Summary    *summary.Service
	Recomputer summary.Recomputer
	Events     *event.Service
	Notifier   *notify.Notifier

	// DB is set when the store is the local SQLite board.
	DB *sqlite.DB
}

// New builds the service graph from cfg.
func New(cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{Config: cfg, Logger: logger}

	store := opts.Store
	if store == nil {
		var err error
		store, err = a.openStore()
		if err != nil {
			return nil, err
		}
	}
	a.Store = store

	a.Board = board.NewService(store, cache.New(), logger.With("component", "board"))
	a.Summary = summary.NewService(a.Board, summary.Options{
		SummaryCard: cfg.Summary.Card,
		Rules:       cfg.Summary.Rules,
		Retry:       cfg.RetryPolicy(trello.IsTransient),
	}, logger.With("component", "summary"))

	a.Recomputer = a.Summary
	if cfg.Recompute.Coalesce {
		a.Recomputer = summary.NewCoalescer(a.Summary, logger.With("component", "coalescer"))
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = newMailer(cfg.Email, logger)
	}
	a.Notifier = notify.New(mailer, notify.Config{
		From:    cfg.Email.From,
		To:      cfg.Email.To,
		ToName:  cfg.Email.ToName,
		ErrorTo: cfg.Email.ErrorTo,
	}, logger.With("component", "notify"))

	a.Events = event.NewService(a.Board, a.Recomputer, a.Notifier, event.Options{
		SummaryCard: cfg.Summary.Card,
		WatchLists:  cfg.Router.WatchLists,
		Guard:       cfg.Router.Guard,
	}, logger.With("component", "router"))

	return a, nil
}

func (a *App) openStore() (board.Store, error) {
	cfg := a.Config
	if cfg.UsesTrello() {
		client, err := trello.NewClient(trello.Config{
			BaseURL: cfg.Board.BaseURL,
			Key:     cfg.Board.Key,
			Token:   cfg.Board.Token,
			BoardID: cfg.Board.BoardID,
			Logger:  a.Logger.With("component", "trello"),
		})
		if err != nil {
			return nil, fmt.Errorf("create trello client: %w", err)
		}
		return client, nil
	}

	if !strings.HasPrefix(strings.TrimSpace(cfg.Board.DSN), sqlite.DSNPrefix) {
		return nil, fmt.Errorf("unsupported board dsn %q", cfg.Board.DSN)
	}
	db, err := sqlite.Open(cfg.Board.DSN)
	if err != nil {
		return nil, fmt.Errorf("open board database: %w", err)
	}
	a.DB = db
	return sqlite.NewBoardStore(db), nil
}

func newMailer(cfg config.EmailConfig, logger *slog.Logger) notify.Mailer {
	if cfg.From == "" || cfg.Password == "" {
		return notify.NewLogMailer(logger.With("component", "mailer"))
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.From,
		Password: cfg.Password,
	})
}

// MCPServer builds the operator MCP server for the given transport mode.
func (a *App) MCPServer(mode string) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Recomputer: a.Recomputer,
			Summary:    a.Summary,
			Board:      a.Board,
		},
		Token:         a.Config.MCP.Token,
		TransportMode: mode,
		Version:       Version,
		Logger:        a.Logger.With("component", "mcp"),
	})
}

// HTTPHandler builds the webhook router, with the MCP server mounted at
// /mcp when enabled.
func (a *App) HTTPHandler() http.Handler {
	opts := transport.Options{
		Events:     a.Events,
		Recomputer: a.Recomputer,
		Webhook: transport.WebhookOptions{
			Secret:      a.Config.Webhook.Secret,
			CallbackURL: a.Config.Webhook.CallbackURL,
		},
		Logger: a.Logger.With("component", "http"),
	}
	if a.Config.MCP.Enabled {
		server := a.MCPServer("http")
		opts.MCP = sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return server },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		)
	}
	return transport.NewServer(opts)
}

// Close releases the store.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
