package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	Defaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ModeBackground, cfg.Mode)
	assert.Equal(t, 30, cfg.MaximumFPS)
	assert.Empty(t, cfg.Screens)
}

func TestLoadScreens(t *testing.T) {
	v := newViper()
	v.Set("screens", []string{"HDMI-1", "DP-1"})
	v.Set("fps", 144)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"HDMI-1", "DP-1"}, cfg.Screens)
	assert.Equal(t, 144, cfg.MaximumFPS)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	v := newViper()
	v.Set("mode", "fullscreen")

	_, err := Load(v)
	assert.ErrorContains(t, err, "unknown render mode")
}

func TestLoadRejectsNonPositiveFPS(t *testing.T) {
	v := newViper()
	v.Set("fps", 0)

	_, err := Load(v)
	assert.ErrorContains(t, err, "fps must be positive")
}

func TestLoadRejectsBadWindowSize(t *testing.T) {
	v := newViper()
	v.Set("window_width", -1)

	_, err := Load(v)
	assert.ErrorContains(t, err, "window size")
}
