package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/event"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/retry"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Board     BoardConfig     `yaml:"board"`
	Summary   SummaryConfig   `yaml:"summary"`
	Retry     RetryConfig     `yaml:"retry"`
	Recompute RecomputeConfig `yaml:"recompute"`
	Router    RouterConfig    `yaml:"router"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	MCP       MCPConfig       `yaml:"mcp"`
	Email     EmailConfig     `yaml:"email"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// TransportConfig selects how the MCP operator surface is served: "http"
// mounts it next to the webhook, "stdio" serves it on stdin/stdout.
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// BoardConfig selects the board store. An empty DSN or "trello" uses the
// Trello REST API; "sqlite://<path>" uses a local SQLite board.
type BoardConfig struct {
	DSN     string `yaml:"dsn"`
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Token   string `yaml:"token"`
	BoardID string `yaml:"board_id"`
}

// SummaryConfig identifies the summary card and the aggregation rules.
type SummaryConfig struct {
	Card          board.CardRef `yaml:"card"`
	summary.Rules `yaml:",inline"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
	// Classify stops retrying on errors that cannot succeed, such as 404s.
	Classify bool `yaml:"classify"`
}

type RecomputeConfig struct {
	// Coalesce keeps at most one recompute in flight.
	Coalesce bool `yaml:"coalesce"`
}

type RouterConfig struct {
	WatchLists []string          `yaml:"watch_lists"`
	Guard      event.GuardConfig `yaml:"guard"`
}

type WebhookConfig struct {
	// Secret enables X-Trello-Webhook signature checks when set.
	Secret      string `yaml:"secret"`
	CallbackURL string `yaml:"callback_url"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
	// Token, when set, is required as a bearer token on HTTP MCP requests.
	Token string `yaml:"token"`
}

type EmailConfig struct {
	From     string   `yaml:"from"`
	Password string   `yaml:"password"`
	To       []string `yaml:"to"`
	ToName   string   `yaml:"to_name"`
	ErrorTo  []string `yaml:"error_to"`
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Summary: SummaryConfig{
			Rules: summary.DefaultRules(),
		},
		Retry: RetryConfig{
			Attempts: retry.DefaultMaxAttempts,
			Delay:    retry.DefaultDelay,
		},
		Router: RouterConfig{
			Guard: event.GuardConfig{RequiredField: event.DefaultRequiredField},
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Email: EmailConfig{
			ToName:   "Team",
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and
// environment variables, in that order. An empty path falls back to
// BOARDSUM_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BOARDSUM_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setList := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	setString("BOARDSUM_SERVER_HOST", &cfg.Server.Host)
	if err := setInt("BOARDSUM_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	setString("BOARDSUM_LOG_LEVEL", &cfg.Log.Level)
	setString("BOARDSUM_LOG_PATH", &cfg.Log.Path)
	setString("BOARDSUM_TRANSPORT_MODE", &cfg.Transport.Mode)

	setString("BOARDSUM_BOARD_DSN", &cfg.Board.DSN)
	setString("TRELLO_API_KEY", &cfg.Board.Key)
	setString("TRELLO_TOKEN", &cfg.Board.Token)
	setString("BOARD_ID", &cfg.Board.BoardID)
	setString("SUMMARY_CARD_ID", &cfg.Summary.Card.ShortID)
	setString("SUMMARY_CARD_ID_LONG", &cfg.Summary.Card.ID)

	if err := setInt("BOARDSUM_RETRY_ATTEMPTS", &cfg.Retry.Attempts); err != nil {
		return err
	}
	if v := os.Getenv("BOARDSUM_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BOARDSUM_RETRY_DELAY: %w", err)
		}
		cfg.Retry.Delay = d
	}
	if err := setBool("BOARDSUM_RECOMPUTE_COALESCE", &cfg.Recompute.Coalesce); err != nil {
		return err
	}

	setList("BOARDSUM_WATCH_LISTS", &cfg.Router.WatchLists)
	setString("BOARDSUM_GUARD_TARGET_LIST", &cfg.Router.Guard.TargetListID)
	setString("BOARDSUM_GUARD_RETURN_LIST", &cfg.Router.Guard.ReturnListID)
	setString("BOARDSUM_GUARD_FIELD", &cfg.Router.Guard.RequiredField)

	setString("BOARDSUM_WEBHOOK_SECRET", &cfg.Webhook.Secret)
	setString("BOARDSUM_WEBHOOK_CALLBACK_URL", &cfg.Webhook.CallbackURL)
	setString("BOARDSUM_MCP_TOKEN", &cfg.MCP.Token)
	if err := setBool("BOARDSUM_MCP_ENABLED", &cfg.MCP.Enabled); err != nil {
		return err
	}

	setString("EMAIL_FROM", &cfg.Email.From)
	setString("EMAIL_PASS", &cfg.Email.Password)
	setList("EMAIL_TO", &cfg.Email.To)
	setString("EMAIL_TO_NAME", &cfg.Email.ToName)
	setList("EMAIL_TO_ERROR", &cfg.Email.ErrorTo)
	setString("SMTP_HOST", &cfg.Email.SMTPHost)
	return setInt("SMTP_PORT", &cfg.Email.SMTPPort)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UsesTrello reports whether the board store is the Trello REST API.
func (c Config) UsesTrello() bool {
	dsn := strings.TrimSpace(c.Board.DSN)
	return dsn == "" || dsn == "trello"
}

// RetryPolicy builds the retry policy for remote calls. classify is used
// as the error classifier when Retry.Classify is set.
func (c Config) RetryPolicy(classify func(error) bool) retry.Policy {
	p := retry.Policy{MaxAttempts: c.Retry.Attempts, Delay: c.Retry.Delay}
	if c.Retry.Classify {
		p.Retryable = classify
	}
	return p
}

// Validate checks the configuration once at startup.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		errs = append(errs, fmt.Errorf("transport.mode must be http or stdio, got %q", c.Transport.Mode))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.UsesTrello() {
		if c.Board.Key == "" || c.Board.Token == "" {
			errs = append(errs, errors.New("TRELLO_API_KEY and TRELLO_TOKEN are required"))
		}
		if c.Board.BoardID == "" {
			errs = append(errs, errors.New("BOARD_ID is required"))
		}
	}
	if c.Summary.Card.ID == "" && c.Summary.Card.ShortID == "" {
		errs = append(errs, errors.New("SUMMARY_CARD_ID or SUMMARY_CARD_ID_LONG is required"))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts))
	}
	if err := c.Summary.Rules.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
