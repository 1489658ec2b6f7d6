package summary

import (
	"context"

	"github.com/rpggio/boardsum/internal/domain/board"
)

// Board is the subset of the board accessor the engine reads and writes.
// *board.Service implements it.
type Board interface {
	ResolveFieldID(ctx context.Context, name string) (string, bool, error)
	SetFieldValue(ctx context.Context, cardID, fieldID, value string) error
	ClearFieldValue(ctx context.Context, cardID, fieldID string) error
	ListCards(ctx context.Context) ([]board.Card, error)
	ListLists(ctx context.Context) ([]board.List, error)
}
