package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName        = "gnotifier"
	configFileName = "config.toml"
	localFileName  = "gnotifier.toml"
	envPrefix      = "GNOTIFIER_"
)

// Engine selects the backend that renders a notification.
type Engine int

// Numeric values match the historical preference values.
const (
	EngineBuiltin  Engine = 0 // hand the alert back to the host's original provider
	EngineNative   Engine = 1 // native desktop notifier
	EngineCommand  Engine = 2 // operator-configured external command
	EngineDisabled Engine = 3 // drop every alert
)

func (e Engine) String() string {
	switch e {
	case EngineBuiltin:
		return "builtin"
	case EngineNative:
		return "native"
	case EngineCommand:
		return "command"
	case EngineDisabled:
		return "disabled"
	default:
		return "engine(" + strconv.Itoa(int(e)) + ")"
	}
}

// UnmarshalText accepts either an engine name or its numeric value.
func (e *Engine) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "builtin", "0":
		*e = EngineBuiltin
	case "native", "1":
		*e = EngineNative
	case "command", "2":
		*e = EngineCommand
	case "disabled", "none", "3":
		*e = EngineDisabled
	default:
		return fmt.Errorf("unknown engine %q", s)
	}
	return nil
}

// Click options decide which of "open folder" and "open file" comes first.
const (
	ClickOpenFolder = 0
	ClickOpenFile   = 1
)

type Config struct {
	Engine      Engine `koanf:"engine" validate:"min=0,max=3"`
	Command     string `koanf:"command"` // e.g. `notify-send -i "%image" "%title" "%text"`
	ClickOption int    `koanf:"click_option" validate:"oneof=0 1"`
	AppName     string `koanf:"app_name" validate:"required"`
	AppIcon     string `koanf:"app_icon"` // icon for download alerts (path or URL)
	LogLevel    string `koanf:"log_level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`

	// Download-complete alerts (default: enabled)
	DownloadCompleteAlert *bool  `koanf:"download_complete_alert"`
	ExcludedExtensions    string `koanf:"excluded_extensions"` // comma separated, e.g. "exe,tmp"

	IconCache IconCacheConfig `koanf:"icon_cache"`
	Downloads DownloadsConfig `koanf:"downloads"`

	// Overrides for localized strings, keyed by catalog key.
	Labels map[string]string `koanf:"labels"`
}

// IconCacheConfig holds icon cache settings.
type IconCacheConfig struct {
	Dir          string        `koanf:"dir"`           // default: <tmp>/gnotifier
	MaxAge       time.Duration `koanf:"max_age"`       // 0 keeps icons until shutdown
	FetchTimeout time.Duration `koanf:"fetch_timeout"` // default: 15s
}

// DownloadsConfig holds the download directory watcher settings.
type DownloadsConfig struct {
	Dir string `koanf:"dir"` // directory watched by `gnotifier watch`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	enabled := true
	return &Config{
		Engine:                EngineNative,
		ClickOption:           ClickOpenFolder,
		AppName:               "GNotifier",
		LogLevel:              "info",
		DownloadCompleteAlert: &enabled,
		IconCache: IconCacheConfig{
			FetchTimeout: 15 * time.Second,
		},
	}
}

// Load reads the layered configuration. Files are applied in order of
// priority (last wins): user config, ./gnotifier.toml, then explicit (if set).
// GNOTIFIER_* environment variables override every file.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if explicit != "" {
		explicit = expandPath(explicit)
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", explicit, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.IconCache.Dir = expandPath(cfg.IconCache.Dir)
	cfg.Downloads.Dir = expandPath(cfg.Downloads.Dir)
	if cfg.IconCache.FetchTimeout <= 0 {
		cfg.IconCache.FetchTimeout = Default().IconCache.FetchTimeout
	}

	return cfg, nil
}

// envTransform converts environment variable names to config keys.
// Example: GNOTIFIER_ICON_CACHE__MAX_AGE -> icon_cache.max_age
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/gnotifier/config.toml
	if xdg.ConfigHome != "" {
		paths = append(paths, filepath.Join(xdg.ConfigHome, appName, configFileName))
	}

	// 2. ./gnotifier.toml (pwd)
	paths = append(paths, localFileName)

	return paths
}

// ActivePath returns the highest-priority configuration file that exists,
// or "" when none does.
func ActivePath(explicit string) string {
	if explicit != "" {
		return expandPath(explicit)
	}
	paths := getConfigPaths()
	for i := len(paths) - 1; i >= 0; i-- {
		if _, err := os.Stat(paths[i]); err == nil {
			return paths[i]
		}
	}
	return ""
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DownloadAlertsEnabled reports whether download-complete alerts are on.
func (c *Config) DownloadAlertsEnabled() bool {
	return c.DownloadCompleteAlert == nil || *c.DownloadCompleteAlert
}

// Exclusions returns the raw excluded-extension entries. An empty setting
// yields no entries; otherwise empty items are kept so that ",exe" excludes
// extension-less files.
func (c *Config) Exclusions() []string {
	return ParseExclusions(c.ExcludedExtensions)
}

// ParseExclusions splits a comma-separated extension list.
func ParseExclusions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// HasCommand returns true if an external command template is configured.
func (c *Config) HasCommand() bool {
	return strings.TrimSpace(c.Command) != ""
}
