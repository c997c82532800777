package app

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	clog "github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// Config controls runtime behavior for the TUI app and the CLI commands.
type Config struct {
	DataDir    string `env:"CODELINGO_DATA_DIR"`
	LogPath    string `env:"CODELINGO_LOG_PATH"`
	LogLevel   string `env:"CODELINGO_LOG_LEVEL"`
	EventLog   string `env:"CODELINGO_EVENT_LOG"`
	CatalogDir string `env:"CODELINGO_CATALOG_DIR"`
	ASCIIOnly  bool   `env:"CODELINGO_ASCII"`
	Debug      bool   `env:"CODELINGO_DEBUG"`
	// StartRoute is the route token the TUI opens with; empty means home.
	StartRoute string
	Gameplay   GameplayConfig
	UI         UIConfig
}

type GameplayConfig struct {
	HeartsEnabled bool `env:"CODELINGO_HEARTS"`
	MaxHearts     int  `env:"CODELINGO_MAX_HEARTS"`
}

type UIConfig struct {
	MotionLevel string `env:"CODELINGO_MOTION"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Gameplay: GameplayConfig{
			MaxHearts: 5,
		},
		UI: UIConfig{
			MotionLevel: "full",
		},
	}
}

// LoadConfig starts from DefaultConfig and applies CODELINGO_* environment
// variables on top. Unset variables keep the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := clog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	if c.Gameplay.MaxHearts == 0 {
		c.Gameplay.MaxHearts = 5
	}
	if c.Gameplay.MaxHearts < 1 {
		return fmt.Errorf("invalid max hearts %d", c.Gameplay.MaxHearts)
	}

	if c.DataDir == "" {
		dir, err := gap.NewScope(gap.User, "codelingo").DataPath("")
		if err != nil {
			return fmt.Errorf("resolve data directory: %w", err)
		}
		c.DataDir = dir
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(c.DataDir, "codelingo.log")
	}
	return nil
}

// DBPath is the sqlite database holding the state slot and attempt log.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "state.db")
}
