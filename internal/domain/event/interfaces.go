package event

import (
	"context"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/summary"
)

// Board is the subset of the board accessor the router uses.
type Board interface {
	ResolveFieldID(ctx context.Context, name string) (string, bool, error)
	GetCard(ctx context.Context, cardID string) (*board.Card, error)
	MoveCard(ctx context.Context, cardID, listID string) error
	AddComment(ctx context.Context, cardID, text string) error
}

// Recomputer runs a full summary recompute.
type Recomputer interface {
	Recompute(ctx context.Context) (*summary.Result, error)
}

// Notifier receives best-effort reports. Implementations must not block
// for long and never fail the caller.
type Notifier interface {
	NotifyError(ctx context.Context, where string, err error)
	NotifyChange(ctx context.Context, ev ChangeEvent)
}
