package board

import "context"

// Store is the raw board API. Implementations: the Trello REST client and
// the local SQLite board. Missing entities are reported as
// repository.ErrNotFound.
type Store interface {
	ListCustomFields(ctx context.Context) ([]CustomField, error)
	GetList(ctx context.Context, listID string) (*List, error)
	ListLists(ctx context.Context) ([]List, error)
	ListCards(ctx context.Context) ([]Card, error)
	GetCard(ctx context.Context, cardID string) (*Card, error)
	SetCustomFieldItem(ctx context.Context, cardID, fieldID, text string) error
	ClearCustomFieldItem(ctx context.Context, cardID, fieldID string) error
	MoveCard(ctx context.Context, cardID, listID string) error
	AddComment(ctx context.Context, cardID, text string) error
}
