package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "mcp", "recompute", "clear-field", "fields", "seed"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "log-level", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "c", cmd.PersistentFlags().Lookup("config").Shorthand)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "fields")
	require.ErrorContains(t, err, `invalid format "xml"`)
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  mode: pigeon\n"), 0o644))

	_, err := execute(t, "--config", path, "fields")
	require.ErrorContains(t, err, "transport.mode must be http or stdio")
}

const testFixture = `
lists:
  - {id: L1, name: Stock}
  - {id: L2, name: Field}
fields:
  - {id: F1, name: Widgets in-stock quantity, type: number}
  - {id: F2, name: Widgets (In-stock)}
  - {id: F3, name: Unused}
cards:
  - {id: S, name: Summary, list: L1}
  - id: C1
    name: Depot
    list: Stock
    values: {Widgets in-stock quantity: 4}
  - id: C2
    name: Warehouse
    list: Stock
    values: {Widgets in-stock quantity: "3 boxes"}
  - id: C3
    name: Site
    list: Field
    values: {Widgets in-stock quantity: 10}
`

// writeBoard writes a config pointing at a fresh SQLite board and a
// fixture for it.
func writeBoard(t *testing.T) (configPath, fixturePath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "data", "board.db")
	configPath = filepath.Join(dir, "config.yaml")
	fixturePath = filepath.Join(dir, "board.yaml")

	cfg := `
board:
  dsn: sqlite://` + dbPath + `
summary:
  card: {id: S}
  mappings:
    - {source: Widgets in-stock quantity, summary: Widgets (In-stock)}
  categories:
    - {name: in-stock, fragment: in-stock quantity, list: Stock}
  list_counts: []
`
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(fixturePath, []byte(testFixture), 0o644))
	return configPath, fixturePath, dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndRecompute(t *testing.T) {
	configPath, fixturePath, dbPath := writeBoard(t)

	out, err := execute(t, "--config", configPath, "seed", fixturePath)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 2 lists, 3 fields, 4 cards\n", out)

	out, err = execute(t, "--config", configPath, "--format", "json", "recompute")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   summary.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]float64{"Widgets (In-stock)": 7}, resp.Data.Totals)
	assert.Equal(t, 2, resp.Data.Counted)
	assert.Equal(t, 1, resp.Data.Skipped)

	db, err := sqlite.Open(sqlite.DSNPrefix + dbPath)
	require.NoError(t, err)
	defer db.Close()
	card, err := sqlite.NewBoardStore(db).GetCard(context.Background(), "S")
	require.NoError(t, err)
	item, ok := card.FieldItem("F2")
	require.True(t, ok)
	assert.Equal(t, "7", item.Value.Text)
}

func TestRecompute_Text(t *testing.T) {
	configPath, fixturePath, _ := writeBoard(t)
	_, err := execute(t, "--config", configPath, "seed", fixturePath)
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "recompute")
	require.NoError(t, err)
	assert.Contains(t, out, "2 cards counted, 1 skipped")
	assert.Contains(t, out, "  Widgets (In-stock): 7\n")
}

func TestFieldsAndClearField(t *testing.T) {
	configPath, fixturePath, _ := writeBoard(t)
	_, err := execute(t, "--config", configPath, "seed", fixturePath)
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "fields")
	require.NoError(t, err)
	assert.Contains(t, out, "F1\tnumber\tWidgets in-stock quantity\n")
	assert.Contains(t, out, "F3\ttext\tUnused\n")

	_, err = execute(t, "--config", configPath, "recompute")
	require.NoError(t, err)

	out, err = execute(t, "--config", configPath, "clear-field", "Widgets (In-stock)")
	require.NoError(t, err)
	assert.Equal(t, "Cleared \"Widgets (In-stock)\" on the summary card\n", out)

	out, err = execute(t, "--config", configPath, "--format", "json", "clear-field", "Nope")
	require.ErrorIs(t, err, summary.ErrSummaryFieldNotFound)
	assert.Contains(t, out, `"status": "error"`)
}

func TestSeed_RequiresSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
board: {key: k, token: t, board_id: b}
summary: {card: {id: S}}
`), 0o644))

	_, err := execute(t, "--config", path, "seed", "board.yaml")
	require.ErrorContains(t, err, "requires a sqlite:// board dsn")
}
