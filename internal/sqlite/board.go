package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/repository"
)

// BoardStore implements board.Store on a local SQLite database. Cards can
// be addressed by id or short link.
type BoardStore struct {
	db *DB
}

var _ board.Store = (*BoardStore)(nil)

// NewBoardStore creates a new BoardStore
func NewBoardStore(db *DB) *BoardStore {
	return &BoardStore{db: db}
}

// ListCustomFields returns every custom field definition
func (s *BoardStore) ListCustomFields(ctx context.Context) ([]board.CustomField, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type FROM custom_fields ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	defer rows.Close()

	var fields []board.CustomField
	for rows.Next() {
		var f board.CustomField
		if err := rows.Scan(&f.ID, &f.Name, &f.Type); err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// GetList retrieves a list by ID
func (s *BoardStore) GetList(ctx context.Context, listID string) (*board.List, error) {
	var list board.List
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM lists WHERE id = ?`, listID).Scan(&list.ID, &list.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return &list, nil
}

// ListLists returns every list in board order
func (s *BoardStore) ListLists(ctx context.Context) ([]board.List, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM lists ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []board.List
	for rows.Next() {
		var l board.List
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// ListCards returns every card with its custom field items
func (s *BoardStore) ListCards(ctx context.Context) ([]board.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(short_link, ''), name, list_id
		FROM cards
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	var cards []board.Card
	index := make(map[string]int)
	for rows.Next() {
		var c board.Card
		if err := rows.Scan(&c.ID, &c.ShortLink, &c.Name, &c.ListID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		index[c.ID] = len(cards)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	items, err := s.queryItems(ctx, `
		SELECT card_id, field_id, COALESCE(value_text, ''), COALESCE(value_number, ''), COALESCE(option_id, '')
		FROM custom_field_items
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	for cardID, cardItems := range items {
		if i, ok := index[cardID]; ok {
			cards[i].FieldItems = cardItems
		}
	}
	return cards, nil
}

// GetCard retrieves a card by ID or short link
func (s *BoardStore) GetCard(ctx context.Context, cardID string) (*board.Card, error) {
	var c board.Card
	err := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(short_link, ''), name, list_id
		FROM cards
		WHERE id = ? OR short_link = ?
	`, cardID, cardID).Scan(&c.ID, &c.ShortLink, &c.Name, &c.ListID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	items, err := s.queryItems(ctx, `
		SELECT card_id, field_id, COALESCE(value_text, ''), COALESCE(value_number, ''), COALESCE(option_id, '')
		FROM custom_field_items
		WHERE card_id = ?
		ORDER BY rowid
	`, c.ID)
	if err != nil {
		return nil, err
	}
	c.FieldItems = items[c.ID]
	return &c, nil
}

func (s *BoardStore) queryItems(ctx context.Context, query string, args ...any) (map[string][]board.CustomFieldItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom field items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]board.CustomFieldItem)
	for rows.Next() {
		var cardID string
		var item board.CustomFieldItem
		if err := rows.Scan(&cardID, &item.FieldID, &item.Value.Text, &item.Value.Number, &item.OptionID); err != nil {
			return nil, fmt.Errorf("failed to scan custom field item: %w", err)
		}
		item.ID = cardID + ":" + item.FieldID
		items[cardID] = append(items[cardID], item)
	}
	return items, rows.Err()
}

// resolveCardID maps an id or short link to the card's id
func (s *BoardStore) resolveCardID(ctx context.Context, cardID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM cards WHERE id = ? OR short_link = ?`, cardID, cardID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve card: %w", err)
	}
	return id, nil
}

// SetCustomFieldItem sets a card's custom field to text
func (s *BoardStore) SetCustomFieldItem(ctx context.Context, cardID, fieldID, text string) error {
	id, err := s.resolveCardID(ctx, cardID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_field_items (card_id, field_id, value_text)
		VALUES (?, ?, ?)
		ON CONFLICT (card_id, field_id) DO UPDATE SET
			value_text = excluded.value_text,
			value_number = NULL,
			option_id = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, id, fieldID, text)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to set custom field item: %w", err)
	}
	return nil
}

// SetCustomFieldNumber sets a card's custom field to a number
func (s *BoardStore) SetCustomFieldNumber(ctx context.Context, cardID, fieldID, number string) error {
	id, err := s.resolveCardID(ctx, cardID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_field_items (card_id, field_id, value_number)
		VALUES (?, ?, ?)
		ON CONFLICT (card_id, field_id) DO UPDATE SET
			value_text = NULL,
			value_number = excluded.value_number,
			option_id = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, id, fieldID, number)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to set custom field number: %w", err)
	}
	return nil
}

// ClearCustomFieldItem removes a card's value for a custom field
func (s *BoardStore) ClearCustomFieldItem(ctx context.Context, cardID, fieldID string) error {
	id, err := s.resolveCardID(ctx, cardID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM custom_field_items WHERE card_id = ? AND field_id = ?`, id, fieldID); err != nil {
		return fmt.Errorf("failed to clear custom field item: %w", err)
	}
	return nil
}

// MoveCard moves a card to another list
func (s *BoardStore) MoveCard(ctx context.Context, cardID, listID string) error {
	id, err := s.resolveCardID(ctx, cardID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE cards SET list_id = ? WHERE id = ?`, listID, id)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to move card: %w", err)
	}
	return nil
}

// AddComment posts a comment on a card
func (s *BoardStore) AddComment(ctx context.Context, cardID, text string) error {
	id, err := s.resolveCardID(ctx, cardID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (card_id, text) VALUES (?, ?)`, id, text); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// Comments returns a card's comments, oldest first
func (s *BoardStore) Comments(ctx context.Context, cardID string) ([]string, error) {
	id, err := s.resolveCardID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT text FROM comments WHERE card_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, text)
	}
	return comments, rows.Err()
}
