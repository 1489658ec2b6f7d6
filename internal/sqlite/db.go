package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DSNPrefix marks a board DSN that selects the SQLite store.
const DSNPrefix = "sqlite://"

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if isMemory(dataSourceName) {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Open parses a board DSN ("sqlite://<path>", a bare path or ":memory:"),
// creates the parent directory, opens the database and runs migrations.
func Open(dsn string) (*DB, error) {
	path := PathFromDSN(dsn)
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("failed to prepare database path: %w", err)
	}
	db, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// PathFromDSN strips the sqlite:// prefix.
func PathFromDSN(dsn string) string {
	return strings.TrimPrefix(strings.TrimSpace(dsn), DSNPrefix)
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func ensureDBDir(path string) error {
	if path == "" || isMemory(path) {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// RunMigrations creates the board schema. It is safe to run on every
// start.
func (db *DB) RunMigrations() error {
	migration := `
-- Lists
CREATE TABLE IF NOT EXISTS lists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0
);

-- Cards
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    short_link TEXT UNIQUE,
    name TEXT NOT NULL,
    list_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (list_id) REFERENCES lists(id)
);
CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id);

-- Custom field definitions
CREATE TABLE IF NOT EXISTS custom_fields (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'text'
);

-- Custom field values per card
CREATE TABLE IF NOT EXISTS custom_field_items (
    card_id TEXT NOT NULL,
    field_id TEXT NOT NULL,
    value_text TEXT,
    value_number TEXT,
    option_id TEXT,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (card_id, field_id),
    FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE,
    FOREIGN KEY (field_id) REFERENCES custom_fields(id)
);

-- Card comments
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_comments_card ON comments(card_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
