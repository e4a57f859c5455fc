package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// Screen is one connected, active RandR output with its CRTC rectangle in
// global desktop coordinates.
type Screen struct {
	Name string
	Rect Rect
}

// detectScreens enumerates the connected outputs that have an active mode.
// Outputs without a CRTC (disconnected or disabled) are skipped.
func detectScreens(conn *xgb.Conn, root xproto.Window) ([]Screen, error) {
	resources, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}

	var screens []Screen
	for _, out := range resources.Outputs {
		info, err := randr.GetOutputInfo(conn, out, resources.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected {
			continue
		}
		if info.Crtc == 0 {
			continue
		}

		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil || crtc.Width == 0 || crtc.Height == 0 {
			continue
		}

		screens = append(screens, Screen{
			Name: string(info.Name),
			Rect: Rect{
				X:      int(crtc.X),
				Y:      int(crtc.Y),
				Width:  int(crtc.Width),
				Height: int(crtc.Height),
			},
		})
	}

	return screens, nil
}

// ResolveLayout maps the requested output names onto the detected screens and
// computes the composite surface covering them. Viewport rectangles in the
// result are translated into composite-local coordinates; the composite keeps
// the global offset for later placement.
//
// It fails when none of the requested names matches a detected screen; the
// error lists both sides so the operator can fix the configuration.
func ResolveLayout(screens []Screen, requested []string) (*Layout, error) {
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}

	viewports := make(map[string]*Viewport)
	var (
		haveBounds             bool
		minX, minY, maxX, maxY int
	)

	for _, screen := range screens {
		if !want[screen.Name] {
			continue
		}

		viewports[screen.Name] = &Viewport{Name: screen.Name, Rect: screen.Rect}

		if !haveBounds {
			minX, minY = screen.Rect.X, screen.Rect.Y
			maxX = screen.Rect.X + screen.Rect.Width
			maxY = screen.Rect.Y + screen.Rect.Height
			haveBounds = true
			continue
		}

		minX = min(minX, screen.Rect.X)
		minY = min(minY, screen.Rect.Y)
		maxX = max(maxX, screen.Rect.X+screen.Rect.Width)
		maxY = max(maxY, screen.Rect.Y+screen.Rect.Height)
	}

	if !haveBounds {
		return nil, fmt.Errorf("no requested output matched: detected [%s], requested [%s]",
			screenNames(screens), strings.Join(sorted(requested), ", "))
	}

	composite := CompositeRect{
		FullWidth:  maxX - minX,
		FullHeight: maxY - minY,
		OffsetX:    minX,
		OffsetY:    minY,
	}

	for _, vp := range viewports {
		vp.Rect.X -= minX
		vp.Rect.Y -= minY
	}

	return &Layout{Viewports: viewports, Composite: composite}, nil
}

// fullDesktopLayout is the fallback when per-output geometry is unavailable:
// a single viewport covering the whole root window.
func fullDesktopLayout(rootWidth, rootHeight int) *Layout {
	vp := &Viewport{
		Name: "desktop",
		Rect: Rect{Width: rootWidth, Height: rootHeight},
	}
	return &Layout{
		Viewports: map[string]*Viewport{vp.Name: vp},
		Composite: CompositeRect{FullWidth: rootWidth, FullHeight: rootHeight},
	}
}

func screenNames(screens []Screen) string {
	names := make([]string, 0, len(screens))
	for _, s := range screens {
		names = append(names, s.Name)
	}
	return strings.Join(sorted(names), ", ")
}

func sorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
