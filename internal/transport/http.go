package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/boardsum/internal/domain/event"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/trello"
)

// Response texts of the public endpoints.
const (
	StatusText        = "Trello webhook bot is running"
	SummaryUpdated    = "All summary fields updated!"
	SummaryFailed     = "Error updating summary."
	invalidPayloadMsg = "invalid webhook payload"
)

// maxWebhookBody caps inbound payloads. Trello actions are a few KB.
const maxWebhookBody = 1 << 20

// EventHandler routes translated webhook events.
type EventHandler interface {
	Handle(ctx context.Context, ev event.ChangeEvent) event.Ack
}

// Recomputer runs a full summary recompute.
type Recomputer interface {
	Recompute(ctx context.Context) (*summary.Result, error)
}

// Options wires the HTTP server.
type Options struct {
	Events     EventHandler
	Recomputer Recomputer
	Webhook    WebhookOptions
	// MCP is mounted at /mcp when set.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	events     EventHandler
	recomputer Recomputer
	logger     *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	srv := &Server{
		events:     opts.Events,
		recomputer: opts.Recomputer,
		logger:     logger,
	}

	r.Get("/", srv.handleStatus)
	r.Get("/health", srv.handleHealth)
	r.Get("/update-summary", srv.handleUpdateSummary)
	r.Head("/webhook", srv.handleWebhookHead)
	r.With(SignatureMiddleware(opts.Webhook, logger)).Post("/webhook", srv.handleWebhook)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, StatusText)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleWebhookHead answers the HEAD probe Trello sends when a webhook is
// registered.
func (s *Server) handleWebhookHead(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeText(w, http.StatusBadRequest, invalidPayloadMsg)
		return
	}

	var payload trello.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Warn("invalid webhook payload", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeText(w, http.StatusBadRequest, invalidPayloadMsg)
		return
	}

	// A started run finishes even if the sender hangs up.
	ack := s.events.Handle(context.WithoutCancel(r.Context()), payload.Action.ChangeEvent())
	writeAck(w, r, ack)
}

func (s *Server) handleUpdateSummary(w http.ResponseWriter, r *http.Request) {
	if _, err := s.recomputer.Recompute(context.WithoutCancel(r.Context())); err != nil {
		s.logger.Error("manual recompute failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeText(w, http.StatusInternalServerError, SummaryFailed)
		return
	}
	writeText(w, http.StatusOK, SummaryUpdated)
}
