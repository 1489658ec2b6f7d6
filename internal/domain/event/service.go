package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rpggio/boardsum/internal/domain/board"
)

// Options configures the change event router.
type Options struct {
	SummaryCard board.CardRef
	// WatchLists are list ids whose field changes are announced.
	WatchLists []string
	Guard      GuardConfig
}

// Service routes change events: it filters them, guards against its own
// writes, enforces the move guard, triggers a recompute and announces
// watched changes.
type Service struct {
	board       Board
	recomputer  Recomputer
	notifier    Notifier
	summaryCard board.CardRef
	watchLists  []string
	guard       GuardConfig
	logger      *slog.Logger
}

// NewService creates a new change event router.
func NewService(b Board, recomputer Recomputer, notifier Notifier, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		board:       b,
		recomputer:  recomputer,
		notifier:    notifier,
		summaryCard: opts.SummaryCard,
		watchLists:  opts.WatchLists,
		guard:       opts.Guard,
		logger:      logger,
	}
}

// Handle processes one event synchronously. The returned Ack always has
// StatusOK; failures go to the error notifier.
func (s *Service) Handle(ctx context.Context, ev ChangeEvent) Ack {
	logger := s.logger.With("action", string(ev.Kind), "card", ev.Card.ID)

	if !ev.Kind.Relevant() {
		logger.Debug("ignored action")
		return ack(MessageIgnoredAction)
	}

	if s.isSummaryCard(ev.Card) {
		logger.Debug("ignored summary card update")
		return ack(MessageIgnoredSummary)
	}

	listID, err := s.resolveList(ctx, ev)
	if err != nil {
		logger.Warn("list resolution failed", "error", err)
		s.notifier.NotifyError(ctx, "resolve list", err)
	}
	if listID == "" {
		logger.Info("no list found for card")
		return ack(MessageNoList)
	}
	ev.Card.ListID = listID

	reverted, err := s.enforceGuard(ctx, ev)
	if err != nil {
		logger.Error("move guard failed", "error", err)
		s.notifier.NotifyError(ctx, "move guard", err)
	}
	if reverted {
		result := ack(MessageReverted)
		result.Reverted = true
		return result
	}

	result := ack(MessageReceived)
	if _, err := s.recomputer.Recompute(ctx); err != nil {
		logger.Error("recompute failed", "error", err)
		s.notifier.NotifyError(ctx, "recompute", err)
	} else {
		result.Recomputed = true
	}

	if ev.Field != nil && slices.Contains(s.watchLists, listID) {
		s.notifier.NotifyChange(ctx, ev)
	}
	return result
}

func (s *Service) isSummaryCard(card board.Card) bool {
	return s.summaryCard.Matches(card.ID) || s.summaryCard.Matches(card.ShortLink)
}

// resolveList returns the card's list at event time, fetching the card when
// the payload carries no list.
func (s *Service) resolveList(ctx context.Context, ev ChangeEvent) (string, error) {
	if id := ev.ListID(); id != "" {
		return id, nil
	}
	if ev.Card.ID == "" {
		return "", nil
	}
	card, err := s.board.GetCard(ctx, ev.Card.ID)
	if err != nil {
		if errors.Is(err, board.ErrCardNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("fetching card %s: %w", ev.Card.ID, err)
	}
	return card.ListID, nil
}

type nopNotifier struct{}

func (nopNotifier) NotifyError(context.Context, string, error) {}
func (nopNotifier) NotifyChange(context.Context, ChangeEvent)  {}
