// Package testserver runs the full HTTP surface over an in-memory SQLite
// board for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rpggio/boardsum/internal/app"
	"github.com/rpggio/boardsum/internal/config"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/notify"
	"github.com/rpggio/boardsum/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// SummaryCardID is the id of the summary card in DefaultFixture.
const SummaryCardID = "S"

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Store  *sqlite.BoardStore
	Mail   *Mailbox
}

// Options adjusts the server before it starts.
type Options struct {
	Fixture   sqlite.Fixture
	Configure func(*config.Config)
}

// DefaultRules maps one in-stock and one in-use source field.
func DefaultRules() summary.Rules {
	return summary.Rules{
		Mappings: []summary.Mapping{
			{Source: "Widgets in-stock quantity", Summary: "Widgets (In-stock)"},
			{Source: "Widgets in-use quantity", Summary: "Widgets (In-use)"},
		},
		Categories: []summary.Category{
			{Name: "in-stock", Fragment: "in-stock quantity", List: "Stock"},
			{Name: "in-use", Fragment: "in-use quantity", List: "Field"},
		},
		ListCounts: []summary.ListCount{{List: "Prep", SummaryField: "Total new location"}},
	}
}

// DefaultFixture is a small board matching DefaultRules.
func DefaultFixture() sqlite.Fixture {
	return sqlite.Fixture{
		Lists: []sqlite.FixtureList{
			{ID: "L-stock", Name: "Stock"},
			{ID: "L-field", Name: "Field"},
			{ID: "L-prep", Name: "Prep"},
		},
		Fields: []sqlite.FixtureField{
			{ID: "F-stock", Name: "Widgets in-stock quantity", Type: "number"},
			{ID: "F-use", Name: "Widgets in-use quantity", Type: "number"},
			{ID: "F-sum-stock", Name: "Widgets (In-stock)"},
			{ID: "F-sum-use", Name: "Widgets (In-use)"},
			{ID: "F-new", Name: "Total new location"},
			{ID: "F-owner", Name: "Responsibility"},
		},
		Cards: []sqlite.FixtureCard{
			{ID: SummaryCardID, ShortLink: "sum", Name: "Summary", List: "Stock"},
			{ID: "C1", ShortLink: "c1", Name: "Depot", List: "Stock", Values: map[string]any{
				"Widgets in-stock quantity": 4,
				"Widgets in-use quantity":   9,
			}},
			{ID: "C2", ShortLink: "c2", Name: "Mall", List: "Field", Values: map[string]any{
				"Widgets in-stock quantity": 100,
				"Widgets in-use quantity":   2,
				"Responsibility":            "Sara",
			}},
			{ID: "C3", ShortLink: "c3", Name: "New site", List: "Prep"},
		},
	}
}

// New starts a server over a fresh board seeded with opts.Fixture, or
// DefaultFixture when it is empty.
func New(t *testing.T, opts Options) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Board.DSN = sqlite.DSNPrefix + fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.Summary.Card.ID = SummaryCardID
	cfg.Summary.Rules = DefaultRules()
	cfg.Retry.Attempts = 1
	cfg.Retry.Delay = 0
	cfg.Router.Guard.TargetListID = "L-field"
	cfg.Router.Guard.RequiredField = "Responsibility"
	cfg.Router.WatchLists = []string{"L-field"}
	cfg.Email.From = "bot@example.com"
	cfg.Email.To = []string{"team@example.com"}
	cfg.Email.ErrorTo = []string{"ops@example.com"}
	if opts.Configure != nil {
		opts.Configure(&cfg)
	}
	require.NoError(t, cfg.Validate())

	mail := &Mailbox{}
	a, err := app.New(cfg, nil, app.Options{Mailer: mail})
	require.NoError(t, err)
	require.NotNil(t, a.DB)

	store := sqlite.NewBoardStore(a.DB)
	fixture := opts.Fixture
	if len(fixture.Lists) == 0 && len(fixture.Cards) == 0 {
		fixture = DefaultFixture()
	}
	require.NoError(t, store.Seed(context.Background(), fixture))

	server := httptest.NewServer(a.HTTPHandler())
	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a, Store: store, Mail: mail}
}

// SummaryValue returns the text stored in a summary card field.
func (ts *TestServer) SummaryValue(t *testing.T, fieldID string) string {
	t.Helper()
	card, err := ts.Store.GetCard(context.Background(), SummaryCardID)
	require.NoError(t, err)
	item, ok := card.FieldItem(fieldID)
	if !ok {
		return ""
	}
	return item.Value.Raw()
}

// Mailbox records sent mail.
type Mailbox struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *Mailbox) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *Mailbox) Sent() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}
