package mocks

import (
	"context"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/event"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/stretchr/testify/mock"
)

// BoardStore is a mock for board.Store.
type BoardStore struct {
	mock.Mock
}

func (m *BoardStore) ListCustomFields(ctx context.Context) ([]board.CustomField, error) {
	args := m.Called(ctx)
	if fields, ok := args.Get(0).([]board.CustomField); ok {
		return fields, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BoardStore) GetList(ctx context.Context, listID string) (*board.List, error) {
	args := m.Called(ctx, listID)
	if list, ok := args.Get(0).(*board.List); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BoardStore) ListLists(ctx context.Context) ([]board.List, error) {
	args := m.Called(ctx)
	if lists, ok := args.Get(0).([]board.List); ok {
		return lists, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BoardStore) ListCards(ctx context.Context) ([]board.Card, error) {
	args := m.Called(ctx)
	if cards, ok := args.Get(0).([]board.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BoardStore) GetCard(ctx context.Context, cardID string) (*board.Card, error) {
	args := m.Called(ctx, cardID)
	if card, ok := args.Get(0).(*board.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BoardStore) SetCustomFieldItem(ctx context.Context, cardID, fieldID, text string) error {
	args := m.Called(ctx, cardID, fieldID, text)
	return args.Error(0)
}

func (m *BoardStore) ClearCustomFieldItem(ctx context.Context, cardID, fieldID string) error {
	args := m.Called(ctx, cardID, fieldID)
	return args.Error(0)
}

func (m *BoardStore) MoveCard(ctx context.Context, cardID, listID string) error {
	args := m.Called(ctx, cardID, listID)
	return args.Error(0)
}

func (m *BoardStore) AddComment(ctx context.Context, cardID, text string) error {
	args := m.Called(ctx, cardID, text)
	return args.Error(0)
}

// Recomputer is a mock for event.Recomputer.
type Recomputer struct {
	mock.Mock
}

func (m *Recomputer) Recompute(ctx context.Context) (*summary.Result, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).(*summary.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// Notifier is a mock for event.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) NotifyError(ctx context.Context, where string, err error) {
	m.Called(ctx, where, err)
}

func (m *Notifier) NotifyChange(ctx context.Context, ev event.ChangeEvent) {
	m.Called(ctx, ev)
}

// EventHandler is a mock for transport.EventHandler.
type EventHandler struct {
	mock.Mock
}

func (m *EventHandler) Handle(ctx context.Context, ev event.ChangeEvent) event.Ack {
	args := m.Called(ctx, ev)
	return args.Get(0).(event.Ack)
}
