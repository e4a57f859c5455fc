package output

import "fmt"

// Rect is a pixel rectangle. Depending on context its origin is either the
// global desktop origin or the composite surface origin.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}

// Viewport is one monitor's render target rectangle, expressed relative to
// the composite surface origin. Immutable once resolved; a fault-recovery
// reset rebuilds the whole set.
type Viewport struct {
	Name string
	Rect Rect
}

// CompositeRect describes the bounding box of all requested viewports: its
// size, and its offset inside the global desktop coordinate space.
type CompositeRect struct {
	FullWidth  int
	FullHeight int
	OffsetX    int
	OffsetY    int
}

// Layout is the result of geometry resolution: every requested viewport in
// composite-local coordinates, plus the composite rectangle covering them.
type Layout struct {
	Viewports map[string]*Viewport
	Composite CompositeRect
}
