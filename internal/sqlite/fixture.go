package sqlite

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rpggio/boardsum/internal/domain/board"
	"gopkg.in/yaml.v3"
)

// Fixture describes a board to load into a local store.
type Fixture struct {
	Lists  []FixtureList  `yaml:"lists"`
	Fields []FixtureField `yaml:"fields"`
	Cards  []FixtureCard  `yaml:"cards"`
}

type FixtureList struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type FixtureField struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// FixtureCard values are keyed by field name. Numbers are stored as number
// items, everything else as text.
type FixtureCard struct {
	ID        string         `yaml:"id"`
	ShortLink string         `yaml:"short_link"`
	Name      string         `yaml:"name"`
	List      string         `yaml:"list"`
	Values    map[string]any `yaml:"values"`
}

// LoadFixture reads a YAML board fixture.
func LoadFixture(path string) (Fixture, error) {
	var f Fixture
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixture: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// CreateList inserts a list at the end of the board
func (s *BoardStore) CreateList(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM lists))
	`, id, name)
	return insertError(err, "list", id)
}

// CreateCustomField inserts a custom field definition
func (s *BoardStore) CreateCustomField(ctx context.Context, field board.CustomField) error {
	if field.Type == "" {
		field.Type = "text"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_fields (id, name, type) VALUES (?, ?, ?)`, field.ID, field.Name, field.Type)
	return insertError(err, "custom field", field.ID)
}

// CreateCard inserts a card into a list
func (s *BoardStore) CreateCard(ctx context.Context, card board.Card) error {
	var shortLink any
	if card.ShortLink != "" {
		shortLink = card.ShortLink
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, short_link, name, list_id) VALUES (?, ?, ?, ?)`,
		card.ID, shortLink, card.Name, card.ListID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("card %s: unknown list %s", card.ID, card.ListID)
	}
	return insertError(err, "card", card.ID)
}

// Seed loads a fixture into the store. Card lists may be given by id or
// name.
func (s *BoardStore) Seed(ctx context.Context, f Fixture) error {
	listIDs := make(map[string]string)
	for _, l := range f.Lists {
		if err := s.CreateList(ctx, l.ID, l.Name); err != nil {
			return err
		}
		listIDs[l.ID] = l.ID
		listIDs[l.Name] = l.ID
	}

	fieldIDs := make(map[string]string)
	for _, fd := range f.Fields {
		if err := s.CreateCustomField(ctx, board.CustomField{ID: fd.ID, Name: fd.Name, Type: fd.Type}); err != nil {
			return err
		}
		fieldIDs[fd.Name] = fd.ID
	}

	for _, c := range f.Cards {
		listID, ok := listIDs[c.List]
		if !ok {
			listID = c.List
		}
		if err := s.CreateCard(ctx, board.Card{ID: c.ID, ShortLink: c.ShortLink, Name: c.Name, ListID: listID}); err != nil {
			return err
		}
		for name, v := range c.Values {
			fieldID, ok := fieldIDs[name]
			if !ok {
				return fmt.Errorf("card %s: unknown field %q", c.ID, name)
			}
			if err := s.setFixtureValue(ctx, c.ID, fieldID, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BoardStore) setFixtureValue(ctx context.Context, cardID, fieldID string, v any) error {
	switch n := v.(type) {
	case int:
		return s.SetCustomFieldNumber(ctx, cardID, fieldID, strconv.Itoa(n))
	case float64:
		return s.SetCustomFieldNumber(ctx, cardID, fieldID, strconv.FormatFloat(n, 'f', -1, 64))
	default:
		return s.SetCustomFieldItem(ctx, cardID, fieldID, fmt.Sprint(v))
	}
}
