package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLayoutSingleOutput(t *testing.T) {
	screens := []Screen{
		{Name: "HDMI-1", Rect: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	}

	layout, err := ResolveLayout(screens, []string{"HDMI-1"})
	require.NoError(t, err)

	assert.Equal(t, CompositeRect{FullWidth: 1920, FullHeight: 1080}, layout.Composite)
	require.Len(t, layout.Viewports, 1)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, layout.Viewports["HDMI-1"].Rect)
}

func TestResolveLayoutTwoOutputs(t *testing.T) {
	screens := []Screen{
		{Name: "A", Rect: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Name: "B", Rect: Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
	}

	layout, err := ResolveLayout(screens, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, 3200, layout.Composite.FullWidth)
	assert.Equal(t, 1080, layout.Composite.FullHeight)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, layout.Viewports["A"].Rect)
	assert.Equal(t, Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}, layout.Viewports["B"].Rect)
}

func TestResolveLayoutKeepsGlobalOffset(t *testing.T) {
	// A monitor left of and above the desktop origin: local rects start at
	// (0,0) but the composite keeps the global offset for placement.
	screens := []Screen{
		{Name: "DP-1", Rect: Rect{X: -1920, Y: -200, Width: 1920, Height: 1080}},
	}

	layout, err := ResolveLayout(screens, []string{"DP-1"})
	require.NoError(t, err)

	assert.Equal(t, CompositeRect{
		FullWidth: 1920, FullHeight: 1080,
		OffsetX: -1920, OffsetY: -200,
	}, layout.Composite)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, layout.Viewports["DP-1"].Rect)
}

func TestResolveLayoutContainment(t *testing.T) {
	screens := []Screen{
		{Name: "A", Rect: Rect{X: 100, Y: 50, Width: 800, Height: 600}},
		{Name: "B", Rect: Rect{X: 900, Y: 0, Width: 1024, Height: 768}},
		{Name: "C", Rect: Rect{X: 0, Y: 650, Width: 640, Height: 480}},
	}

	layout, err := ResolveLayout(screens, []string{"A", "B", "C"})
	require.NoError(t, err)

	for name, vp := range layout.Viewports {
		assert.GreaterOrEqual(t, vp.Rect.X, 0, "viewport %s x", name)
		assert.GreaterOrEqual(t, vp.Rect.Y, 0, "viewport %s y", name)
		assert.LessOrEqual(t, vp.Rect.X+vp.Rect.Width, layout.Composite.FullWidth, "viewport %s right edge", name)
		assert.LessOrEqual(t, vp.Rect.Y+vp.Rect.Height, layout.Composite.FullHeight, "viewport %s bottom edge", name)
	}
}

func TestResolveLayoutIgnoresUnmatchedWhenOthersMatch(t *testing.T) {
	screens := []Screen{
		{Name: "HDMI-1", Rect: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	}

	layout, err := ResolveLayout(screens, []string{"HDMI-1", "DP-3"})
	require.NoError(t, err)
	assert.Len(t, layout.Viewports, 1)
}

func TestResolveLayoutNoMatchListsBothSides(t *testing.T) {
	screens := []Screen{
		{Name: "HDMI-1", Rect: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Name: "DP-1", Rect: Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	}

	_, err := ResolveLayout(screens, []string{"VGA-1", "eDP-1"})
	require.Error(t, err)

	for _, name := range []string{"HDMI-1", "DP-1", "VGA-1", "eDP-1"} {
		assert.Contains(t, err.Error(), name)
	}
}

// Fault recovery rebuilds the layout from scratch; with unchanged inputs the
// result must be value-equal to the pre-fault state.
func TestResolveLayoutDeterministic(t *testing.T) {
	screens := []Screen{
		{Name: "A", Rect: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Name: "B", Rect: Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
	}
	requested := []string{"B", "A"}

	first, err := ResolveLayout(screens, requested)
	require.NoError(t, err)
	second, err := ResolveLayout(screens, requested)
	require.NoError(t, err)

	assert.Equal(t, first.Composite, second.Composite)
	require.Equal(t, len(first.Viewports), len(second.Viewports))
	for name, vp := range first.Viewports {
		assert.Equal(t, vp, second.Viewports[name])
	}
}

func TestFullDesktopLayout(t *testing.T) {
	layout := fullDesktopLayout(2560, 1440)

	assert.Equal(t, CompositeRect{FullWidth: 2560, FullHeight: 1440}, layout.Composite)
	require.Len(t, layout.Viewports, 1)
	assert.Equal(t, Rect{Width: 2560, Height: 1440}, layout.Viewports["desktop"].Rect)
}
