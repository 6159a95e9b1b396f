package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"wavetree-cli/internal/history"
	"wavetree-cli/internal/logging"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "WAVETREE"
)

// Config is the user configuration from ~/.wavetree/config.yaml, with
// WAVETREE_* environment variables layered on top.
type Config struct {
	UndoStackSize  int       `mapstructure:"undo_stack_size" json:"undoStackSize"`
	LogLevel       string    `mapstructure:"log_level" json:"logLevel"`
	DefaultSession string    `mapstructure:"default_session" json:"defaultSession"`
	TUI            TUIConfig `mapstructure:"tui" json:"tui"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set: unicode or ascii.
	Glyphs string `mapstructure:"glyphs" json:"glyphs"`
	// Theme is auto, light or dark.
	Theme string `mapstructure:"theme" json:"theme"`
}

// ConfigKeys lists the keys `config set` accepts.
var ConfigKeys = []string{"undo_stack_size", "log_level", "default_session", "tui.glyphs", "tui.theme"}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests away from ~/.wavetree).
	if v := strings.TrimSpace(os.Getenv("WAVETREE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wavetree"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

func newViper() (*viper.Viper, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("undo_stack_size", history.DefaultLimit)
	v.SetDefault("log_level", logging.DefaultLevel.String())
	v.SetDefault("default_session", DefaultSessionName)
	v.SetDefault("tui.glyphs", "unicode")
	v.SetDefault("tui.theme", "auto")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func LoadConfig() (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.UndoStackSize <= 0 {
		cfg.UndoStackSize = history.DefaultLimit
	}
	return cfg, nil
}

// SetConfigValue writes one key to the config file, creating it if needed.
func SetConfigValue(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !slices.Contains(ConfigKeys, key) {
		return fmt.Errorf("unknown config key: %q (known: %s)", key, strings.Join(ConfigKeys, ", "))
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// Read the file alone so environment overrides are not written back.
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	v.Set(key, value)
	return v.WriteConfigAs(path)
}

func NormalizeSessionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("session name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid session name: %q", name)
	}
	return name, nil
}

// SessionDir is where the named session lives: ~/.wavetree/sessions/<name>.
func SessionDir(name string) (string, error) {
	name, err := NormalizeSessionName(name)
	if err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions", name), nil
}

// ListSessions returns the names of the sessions under the config dir.
func ListSessions() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(filepath.Join(dir, "sessions"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	out := []string{}
	for _, e := range ents {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	slices.Sort(out)
	return out, nil
}
