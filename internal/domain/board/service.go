package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/boardsum/internal/cache"
	"github.com/rpggio/boardsum/internal/repository"
)

// Service is the typed board accessor. Name and id lookups go through the
// identifier cache; everything else is a single call to the store.
type Service struct {
	store  Store
	ids    *cache.IdentifierCache
	logger *slog.Logger
}

// NewService creates a new board accessor.
func NewService(store Store, ids *cache.IdentifierCache, logger *slog.Logger) *Service {
	if ids == nil {
		ids = cache.New()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, ids: ids, logger: logger}
}

// ResolveFieldID maps a custom field name to its id. ok is false when the
// board has no field with exactly that name.
func (s *Service) ResolveFieldID(ctx context.Context, name string) (string, bool, error) {
	if id, ok := s.ids.FieldID(name); ok {
		return id, true, nil
	}

	fields, err := s.store.ListCustomFields(ctx)
	if err != nil {
		return "", false, fmt.Errorf("listing custom fields: %w", err)
	}
	for _, field := range fields {
		if field.Name == name {
			s.ids.SetFieldID(name, field.ID)
			return field.ID, true, nil
		}
	}
	s.logger.Debug("custom field not found", "field", name)
	return "", false, nil
}

// SetFieldValue writes value as the text of a card's custom field.
func (s *Service) SetFieldValue(ctx context.Context, cardID, fieldID, value string) error {
	if strings.TrimSpace(cardID) == "" || strings.TrimSpace(fieldID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.SetCustomFieldItem(ctx, cardID, fieldID, value); err != nil {
		return fmt.Errorf("setting field %s on card %s: %w", fieldID, cardID, err)
	}
	return nil
}

// ClearFieldValue removes a card's value for a custom field.
func (s *Service) ClearFieldValue(ctx context.Context, cardID, fieldID string) error {
	if strings.TrimSpace(cardID) == "" || strings.TrimSpace(fieldID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.ClearCustomFieldItem(ctx, cardID, fieldID); err != nil {
		return fmt.Errorf("clearing field %s on card %s: %w", fieldID, cardID, err)
	}
	return nil
}

// ResolveListName maps a list id to its display name.
func (s *Service) ResolveListName(ctx context.Context, listID string) (string, error) {
	if name, ok := s.ids.ListName(listID); ok {
		return name, nil
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrListNotFound
		}
		return "", fmt.Errorf("getting list %s: %w", listID, err)
	}
	s.ids.SetListName(listID, list.Name)
	return list.Name, nil
}

// ListCards returns every card on the board with its custom field items.
func (s *Service) ListCards(ctx context.Context) ([]Card, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	return cards, nil
}

// ListLists returns every list on the board. Names are cached as a side
// effect so later ResolveListName calls are free.
func (s *Service) ListLists(ctx context.Context) ([]List, error) {
	lists, err := s.store.ListLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	for _, list := range lists {
		s.ids.SetListName(list.ID, list.Name)
	}
	return lists, nil
}

// ListCustomFields returns the board's custom field definitions.
func (s *Service) ListCustomFields(ctx context.Context) ([]CustomField, error) {
	fields, err := s.store.ListCustomFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing custom fields: %w", err)
	}
	for _, field := range fields {
		s.ids.SetFieldID(field.Name, field.ID)
	}
	return fields, nil
}

// GetCard fetches a single card with its custom field items.
func (s *Service) GetCard(ctx context.Context, cardID string) (*Card, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, ErrInvalidInput
	}
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("getting card %s: %w", cardID, err)
	}
	return card, nil
}

// MoveCard moves a card to another list.
func (s *Service) MoveCard(ctx context.Context, cardID, listID string) error {
	if strings.TrimSpace(cardID) == "" || strings.TrimSpace(listID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.MoveCard(ctx, cardID, listID); err != nil {
		return fmt.Errorf("moving card %s to list %s: %w", cardID, listID, err)
	}
	return nil
}

// AddComment posts a comment on a card.
func (s *Service) AddComment(ctx context.Context, cardID, text string) error {
	if strings.TrimSpace(cardID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.AddComment(ctx, cardID, text); err != nil {
		return fmt.Errorf("commenting on card %s: %w", cardID, err)
	}
	return nil
}

// ClearCache drops every cached list name and field id and reports how
// many of each were dropped.
func (s *Service) ClearCache() (lists, fields int) {
	lists, fields = s.ids.Clear()
	s.logger.Info("identifier cache cleared", "lists", lists, "fields", fields)
	return lists, fields
}
