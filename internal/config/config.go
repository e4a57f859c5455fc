// Package config loads the runtime settings for the wallpaper process.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// RenderMode selects how rendered frames reach the screen.
type RenderMode string

const (
	// ModeBackground composites into the desktop background of the
	// requested monitors.
	ModeBackground RenderMode = "background"
	// ModeWindow renders into a regular visible window.
	ModeWindow RenderMode = "window"
)

// Config holds everything the driver and output layers need. It is built once
// at startup and never mutated afterwards; in particular MaximumFPS is fixed
// for the process lifetime.
type Config struct {
	// Screens lists the RandR output names to draw onto in background mode.
	Screens []string
	// Mode is the presentation mode.
	Mode RenderMode
	// MaximumFPS caps the frame rate. Always positive.
	MaximumFPS int
	// WindowWidth and WindowHeight size the window in window mode.
	WindowWidth  int
	WindowHeight int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogPretty switches the log output to human-readable console lines.
	LogPretty bool
}

// Defaults registers the default values on a viper instance.
func Defaults(v *viper.Viper) {
	v.SetDefault("fps", 30)
	v.SetDefault("mode", string(ModeBackground))
	v.SetDefault("window_width", 1280)
	v.SetDefault("window_height", 720)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
}

// Load validates the viper state and produces an immutable Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Screens:      v.GetStringSlice("screens"),
		Mode:         RenderMode(strings.ToLower(v.GetString("mode"))),
		MaximumFPS:   v.GetInt("fps"),
		WindowWidth:  v.GetInt("window_width"),
		WindowHeight: v.GetInt("window_height"),
		LogLevel:     v.GetString("log_level"),
		LogPretty:    v.GetBool("log_pretty"),
	}

	switch cfg.Mode {
	case ModeBackground, ModeWindow:
	default:
		return nil, fmt.Errorf("unknown render mode %q (want %q or %q)",
			cfg.Mode, ModeBackground, ModeWindow)
	}

	if cfg.MaximumFPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", cfg.MaximumFPS)
	}

	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d",
			cfg.WindowWidth, cfg.WindowHeight)
	}

	return cfg, nil
}
