// Package output owns the windowing-system side of presentation: monitor
// geometry resolution, the composite surface, the compositing backends and
// fault recovery. The frame driver holds an Output by reference; the Output's
// lifetime spans fault-recovery resets the driver never sees.
package output

// Output is the uniform contract the frame driver renders into.
type Output interface {
	// Viewports returns every render target, keyed by output name, with
	// rectangles relative to the composite surface origin.
	Viewports() map[string]*Viewport
	// FullSize returns the composite surface dimensions.
	FullSize() (width, height int)
	// HasImageBuffer reports whether rendered pixels must be read back into
	// ImageBuffer before UpdateRender.
	HasImageBuffer() bool
	// ImageBuffer is the BGRA backing buffer, rows packed at the composite
	// full width. Nil when HasImageBuffer is false.
	ImageBuffer() []byte
	// RenderVFlip reports whether the renderer must flip vertically for this
	// output's buffer convention.
	RenderVFlip() bool
	// UpdateRender presents the current ImageBuffer contents.
	UpdateRender() error
	// Close releases all owned resources.
	Close()
}

// Host is the subset of the video driver the output layer needs during
// setup. Every driver variant exposes EnsureFramebufferSize; drivers without
// a negotiation protocol implement it as a plain resize.
type Host interface {
	// EnsureFramebufferSize reconciles the window and drawable size with the
	// composite size.
	EnsureFramebufferSize(width, height int)
	// InstallDirectResize provides the lower-level resize primitive used as
	// the negotiation fallback of last resort.
	InstallDirectResize(fn func(width, height int))
	// NativeWindow returns the X11 window id backing the GL context, or 0
	// when unavailable.
	NativeWindow() uint32
}

// WindowOutput presents into a plain visible window: a single viewport that
// tracks the drawable size, no readback, no compositing.
type WindowOutput struct {
	viewport *Viewport
}

func NewWindowOutput(width, height int) *WindowOutput {
	return &WindowOutput{
		viewport: &Viewport{
			Name: "window",
			Rect: Rect{Width: width, Height: height},
		},
	}
}

// Resize follows the drawable size; the driver calls it from the framebuffer
// resize callback.
func (w *WindowOutput) Resize(width, height int) {
	w.viewport.Rect.Width = width
	w.viewport.Rect.Height = height
}

func (w *WindowOutput) Viewports() map[string]*Viewport {
	return map[string]*Viewport{w.viewport.Name: w.viewport}
}

func (w *WindowOutput) FullSize() (int, int) {
	return w.viewport.Rect.Width, w.viewport.Rect.Height
}

func (w *WindowOutput) HasImageBuffer() bool { return false }
func (w *WindowOutput) ImageBuffer() []byte  { return nil }
func (w *WindowOutput) RenderVFlip() bool    { return true }
func (w *WindowOutput) UpdateRender() error  { return nil }
func (w *WindowOutput) Close()               {}
