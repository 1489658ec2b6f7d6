package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/boardsum/internal/config"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOARDSUM_CONFIG_PATH", "")
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Len(t, cfg.Summary.Mappings, 10)
	require.Len(t, cfg.Summary.Categories, 2)
	require.Equal(t, 2, cfg.Retry.Attempts)
	require.Equal(t, time.Second, cfg.Retry.Delay)
	require.Equal(t, "Team", cfg.Email.ToName)
	require.True(t, cfg.UsesTrello())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOARDSUM_CONFIG_PATH", "")
	t.Setenv("TRELLO_API_KEY", "key")
	t.Setenv("TRELLO_TOKEN", "token")
	t.Setenv("BOARD_ID", "board")
	t.Setenv("SUMMARY_CARD_ID", "AbCd1234")
	t.Setenv("SUMMARY_CARD_ID_LONG", "5f0c0ffee")
	t.Setenv("EMAIL_TO", "a@example.com, b@example.com")
	t.Setenv("BOARDSUM_RETRY_DELAY", "250ms")
	t.Setenv("BOARDSUM_RECOMPUTE_COALESCE", "true")
	t.Setenv("BOARDSUM_WATCH_LISTS", "L1,L2")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "AbCd1234", cfg.Summary.Card.ShortID)
	require.Equal(t, "5f0c0ffee", cfg.Summary.Card.ID)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.To)
	require.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	require.True(t, cfg.Recompute.Coalesce)
	require.Equal(t, []string{"L1", "L2"}, cfg.Router.WatchLists)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("BOARDSUM_CONFIG_PATH", "")
	t.Setenv("BOARDSUM_SERVER_PORT", "eighty")
	_, err := config.Load("")
	require.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("BOARDSUM_CONFIG_PATH", "")
	path := filepath.Join(t.TempDir(), "boardsum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
board:
  dsn: sqlite://board.db
summary:
  card:
    id: summary-long
    short_id: SUMSHORT
  mappings:
    - source: Spare parts
      summary: Spare parts (All)
    - source: Geidea in-stock quantity
      summary: Geidea (In-stock)
      category: in-stock
  scoped_totals:
    - source: Onboard quantity
      summary: Onboard (Prep)
      list: Prep
retry:
  attempts: 3
  delay: 2s
router:
  watch_lists: [L-watch]
  guard:
    target_list_id: L-target
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.False(t, cfg.UsesTrello())
	require.Equal(t, "summary-long", cfg.Summary.Card.ID)
	require.Len(t, cfg.Summary.Mappings, 2)
	require.Equal(t, "in-stock", cfg.Summary.Mappings[1].Category)
	require.Len(t, cfg.Summary.Categories, 2, "categories keep their defaults")
	require.Equal(t, []summary.ScopedTotal{{Source: "Onboard quantity", Summary: "Onboard (Prep)", List: "Prep"}}, cfg.Summary.ScopedTotals)
	require.Equal(t, 3, cfg.Retry.Attempts)
	require.Equal(t, 2*time.Second, cfg.Retry.Delay)
	require.Equal(t, "L-target", cfg.Router.Guard.TargetListID)
	require.Equal(t, "Responsibility", cfg.Router.Guard.RequiredField)
}

func TestValidate_ReportsMissingValues(t *testing.T) {
	cfg := config.Default()
	cfg.Transport.Mode = "grpc"
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "transport.mode")
	require.Contains(t, err.Error(), "TRELLO_API_KEY")
	require.Contains(t, err.Error(), "SUMMARY_CARD_ID")
}

func TestRetryPolicy(t *testing.T) {
	cfg := config.Default()
	classify := func(error) bool { return false }

	p := cfg.RetryPolicy(classify)
	require.Equal(t, 2, p.MaxAttempts)
	require.Nil(t, p.Retryable)

	cfg.Retry.Classify = true
	require.NotNil(t, cfg.RetryPolicy(classify).Retryable)
}
