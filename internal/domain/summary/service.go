package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/retry"
	"golang.org/x/sync/errgroup"
)

// Options configures the aggregation engine.
type Options struct {
	SummaryCard board.CardRef
	Rules       Rules
	Retry       retry.Policy
}

// Service recomputes summary totals from a full board snapshot.
type Service struct {
	board  Board
	card   board.CardRef
	rules  Rules
	retry  retry.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new aggregation engine.
func NewService(b Board, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		board:  b,
		card:   opts.SummaryCard,
		rules:  opts.Rules,
		retry:  opts.Retry,
		logger: logger,
		now:    time.Now,
	}
}

// Rules returns the configured aggregation rules.
func (s *Service) Rules() Rules {
	return s.rules
}

// SummaryCard returns the card totals are written to.
func (s *Service) SummaryCard() board.CardRef {
	return s.card
}

type resolvedMapping struct {
	Mapping
	sourceID    string
	category    Category
	categorised bool
}

// Recompute walks every card on the board, sums each mapping's source field
// under its inclusion rule and writes the totals to the summary card.
//
// A terminal remote failure aborts the run; fields written before it keep
// their new values. Summary fields missing from the board are skipped and
// reported as ErrSummaryFieldNotFound once every other write is done.
func (s *Service) Recompute(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:        uuid.NewString(),
		StartedAt:    s.now(),
		Totals:       make(map[string]float64, len(s.rules.Mappings)),
		ListCounts:   make(map[string]int, len(s.rules.ListCounts)),
		ScopedTotals: make(map[string]float64, len(s.rules.ScopedTotals)),
	}
	logger := s.logger.With("run_id", result.RunID)
	logger.Info("recompute started", "mappings", len(s.rules.Mappings))

	cards, listNames, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	mappings, summaryIDs, err := s.resolveMappings(ctx, logger)
	if err != nil {
		return nil, err
	}

	// Totals are keyed by summary field, in first-appearance order.
	var order []string
	for _, m := range mappings {
		if _, ok := result.Totals[m.Summary]; !ok {
			result.Totals[m.Summary] = 0
			order = append(order, m.Summary)
		}
	}

	for _, card := range cards {
		if s.card.MatchesCard(card) {
			logger.Debug("skipping summary card", "card", card.Name)
			continue
		}
		listName := listNames[card.ListID]
		for _, item := range card.FieldItems {
			for _, m := range mappings {
				if m.sourceID == "" || item.FieldID != m.sourceID {
					continue
				}
				if !Includes(m.category, m.categorised, listName) {
					result.Skipped++
					logger.Debug("skipped field item", "card", card.Name, "list", listName, "field", m.Source)
					continue
				}
				result.Totals[m.Summary] += board.ParseQuantity(item.Value)
				result.Counted++
				logger.Debug("counted field item", "card", card.Name, "list", listName, "field", m.Source, "value", item.Value.Raw())
			}
		}
	}

	var missing []error
	collect := func(field string, err error) error {
		if errors.Is(err, ErrSummaryFieldNotFound) {
			missing = append(missing, err)
			result.Missing = append(result.Missing, field)
			return nil
		}
		return err
	}

	for _, field := range order {
		err := s.write(ctx, logger, field, summaryIDs[field], board.FormatQuantity(result.Totals[field]))
		if err = collect(field, err); err != nil {
			return nil, err
		}
	}

	for _, lc := range s.rules.ListCounts {
		count := 0
		for _, card := range cards {
			if !s.card.MatchesCard(card) && listNames[card.ListID] == lc.List {
				count++
			}
		}
		result.ListCounts[lc.SummaryField] = count

		fieldID, err := s.resolve(ctx, lc.SummaryField)
		if err != nil {
			return nil, err
		}
		err = s.write(ctx, logger, lc.SummaryField, fieldID, board.FormatQuantity(float64(count)))
		if err = collect(lc.SummaryField, err); err != nil {
			return nil, err
		}
	}

	for _, st := range s.rules.ScopedTotals {
		sourceID, err := s.resolve(ctx, st.Source)
		if err != nil {
			return nil, err
		}
		total := 0.0
		if sourceID == "" {
			logger.Warn("source field not found", "field", st.Source)
		} else {
			for _, card := range cards {
				if s.card.MatchesCard(card) || listNames[card.ListID] != st.List {
					continue
				}
				if item, ok := card.FieldItem(sourceID); ok {
					total += board.ParseQuantity(item.Value)
				}
			}
		}
		result.ScopedTotals[st.Summary] = total

		fieldID, err := s.resolve(ctx, st.Summary)
		if err != nil {
			return nil, err
		}
		err = s.write(ctx, logger, st.Summary, fieldID, board.FormatQuantity(total))
		if err = collect(st.Summary, err); err != nil {
			return nil, err
		}
	}

	result.Duration = s.now().Sub(result.StartedAt)
	logger.Info("recompute finished",
		"counted", result.Counted,
		"skipped", result.Skipped,
		"missing", len(result.Missing),
		"duration", result.Duration,
	)
	return result, errors.Join(missing...)
}

// ClearSummaryField removes the value of a summary field from the summary
// card. It is a maintenance operation and never runs during Recompute.
func (s *Service) ClearSummaryField(ctx context.Context, name string) error {
	fieldID, err := s.resolve(ctx, name)
	if err != nil {
		return err
	}
	if fieldID == "" {
		return fmt.Errorf("%w: %q", ErrSummaryFieldNotFound, name)
	}
	if err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.board.ClearFieldValue(ctx, s.card.WriteID(), fieldID)
	}); err != nil {
		return fmt.Errorf("clearing %q: %w", name, err)
	}
	s.logger.Info("summary field cleared", "field", name)
	return nil
}

func (s *Service) snapshot(ctx context.Context) ([]board.Card, map[string]string, error) {
	var (
		cards []board.Card
		lists []board.List
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = retry.Value(gctx, s.retry, s.board.ListCards)
		return err
	})
	g.Go(func() error {
		var err error
		lists, err = retry.Value(gctx, s.retry, s.board.ListLists)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("fetching board snapshot: %w", err)
	}

	names := make(map[string]string, len(lists))
	for _, list := range lists {
		names[list.ID] = list.Name
	}
	return cards, names, nil
}

func (s *Service) resolveMappings(ctx context.Context, logger *slog.Logger) ([]resolvedMapping, map[string]string, error) {
	mappings := make([]resolvedMapping, 0, len(s.rules.Mappings))
	summaryIDs := make(map[string]string, len(s.rules.Mappings))
	for _, m := range s.rules.Mappings {
		sourceID, err := s.resolve(ctx, m.Source)
		if err != nil {
			return nil, nil, err
		}
		if sourceID == "" {
			logger.Warn("source field not found", "field", m.Source)
		}
		summaryID, err := s.resolve(ctx, m.Summary)
		if err != nil {
			return nil, nil, err
		}
		if _, seen := summaryIDs[m.Summary]; !seen || summaryID != "" {
			summaryIDs[m.Summary] = summaryID
		}

		category, categorised := s.rules.CategoryFor(m)
		mappings = append(mappings, resolvedMapping{
			Mapping:     m,
			sourceID:    sourceID,
			category:    category,
			categorised: categorised,
		})
	}
	return mappings, summaryIDs, nil
}

type fieldLookup struct {
	id string
	ok bool
}

// resolve returns "" when the board has no field with that name.
func (s *Service) resolve(ctx context.Context, name string) (string, error) {
	found, err := retry.Value(ctx, s.retry, func(ctx context.Context) (fieldLookup, error) {
		id, ok, err := s.board.ResolveFieldID(ctx, name)
		return fieldLookup{id: id, ok: ok}, err
	})
	if err != nil {
		return "", fmt.Errorf("resolving field %q: %w", name, err)
	}
	if !found.ok {
		return "", nil
	}
	return found.id, nil
}

func (s *Service) write(ctx context.Context, logger *slog.Logger, field, fieldID, value string) error {
	if fieldID == "" {
		logger.Warn("summary field not found", "field", field)
		return fmt.Errorf("%w: %q", ErrSummaryFieldNotFound, field)
	}
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.board.SetFieldValue(ctx, s.card.WriteID(), fieldID, value)
	})
	if err != nil {
		return fmt.Errorf("writing %q: %w", field, err)
	}
	logger.Info("summary field updated", "field", field, "value", value)
	return nil
}
