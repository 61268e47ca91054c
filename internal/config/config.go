// Package config is the core's configuration collaborator (spec.md §6):
// it loads the read-only window arrangement, border, binding and color
// settings consumed by the core. Sections mirror original_source's
// ArrangementSettings/BorderSettings/KeySettings/ColourSettings
// (src/config.rs), translated from serde+TOML to viper+TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Windows is the [windows] section: arrangement settings.
type Windows struct {
	InnerGap  uint32 `mapstructure:"inner_gap"`
	OuterGap  uint32 `mapstructure:"outer_gap"`
	SmartGaps bool   `mapstructure:"smart_gaps"`
}

// Borders is the [borders] section.
type Borders struct {
	InactiveColor uint32 `mapstructure:"inactive_color"`
	ActiveColor   uint32 `mapstructure:"active_color"`
	Width         uint32 `mapstructure:"width"`
}

// Binding is one entry of the [[bindings]] array.
type Binding struct {
	Modifiers []string `mapstructure:"modifiers"`
	Key       string   `mapstructure:"key"`
	Action    string   `mapstructure:"action"`
	Workspace int      `mapstructure:"workspace"`
	Command   string   `mapstructure:"command"`
}

// Config is the complete read-only configuration value consumed by the
// core.
type Config struct {
	Windows  Windows           `mapstructure:"windows"`
	Borders  Borders           `mapstructure:"borders"`
	Bindings []Binding         `mapstructure:"bindings"`
	Colors   map[string]uint32 `mapstructure:"colors"`
}

// Default returns hard-coded fallback settings used when no config file is
// found, so the manager can still start with a reasonable keybinding set
// (Mod4+Return spawns a terminal, Mod4+Shift+Q kills focus, Mod4+Shift+E
// exits) — the same minimal defaults original_source's register_root
// hard-coded before config loading existed.
func Default() Config {
	return Config{
		Windows: Windows{InnerGap: 4, OuterGap: 4, SmartGaps: true},
		Borders: Borders{InactiveColor: 0x444444, ActiveColor: 0xeeee00, Width: 2},
		Bindings: []Binding{
			{Modifiers: []string{"super"}, Key: "return", Action: "execute", Command: "xterm"},
			{Modifiers: []string{"super", "shift"}, Key: "q", Action: "killfocus"},
			{Modifiers: []string{"super", "shift"}, Key: "e", Action: "exit"},
			{Modifiers: []string{"super"}, Key: "left", Action: "movefocus:left"},
			{Modifiers: []string{"super"}, Key: "right", Action: "movefocus:right"},
			{Modifiers: []string{"super"}, Key: "f", Action: "fullscreen"},
			{Modifiers: []string{"super", "shift"}, Key: "f", Action: "floatfocus"},
		},
	}
}

// Load reads configuration from path (if non-empty) or from the default
// search path (~/.config/rdwm/rdwm.toml), falling back to Default() when
// no file is found. A file that exists but fails to parse is a startup
// error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "rdwm"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("rdwm")
	}

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound || os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
