package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds demo application configuration.
type Config struct {
	DeepLink DeepLinkConfig
	Layout   LayoutConfig
	Tabs     []TabConfig
}

// DeepLinkConfig holds the URI scheme and an optional link resolved at
// startup.
type DeepLinkConfig struct {
	Scheme    string
	StartLink string
}

// LayoutConfig holds the adaptive layout signal fed to the engine.
type LayoutConfig struct {
	Mode string // "compact" or "expanded"
}

// TabConfig declares one tab lane and the destination tag of its root
// screen.
type TabConfig struct {
	Name string
	Home string
}

// Load reads configuration from file and env. Env var overrides use prefix
// WAYPOINT_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("deeplink.scheme", "app")
	v.SetDefault("deeplink.startlink", "")
	v.SetDefault("layout.mode", "compact")
	v.SetDefault("tabs", []map[string]any{
		{"name": "Home", "home": "home"},
		{"name": "Library", "home": "library"},
		{"name": "Browse", "home": "browse"},
	})

	v.SetConfigType("toml")

	cfgPath := os.Getenv("WAYPOINT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "waypoint"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WAYPOINT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Layout.Mode != "compact" && c.Layout.Mode != "expanded" {
		return Config{}, fmt.Errorf("layout.mode %q: want compact or expanded", c.Layout.Mode)
	}
	if len(c.Tabs) == 0 {
		return Config{}, fmt.Errorf("tabs: at least one tab required")
	}
	return c, nil
}

// IsExpanded reports whether the configured layout mode is expanded.
func (c Config) IsExpanded() bool { return c.Layout.Mode == "expanded" }
