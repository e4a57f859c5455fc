package driver

import "github.com/go-gl/glfw/v3.3/glfw"

// Some GLX stacks only update the actual drawable size once the window is
// mapped, so a resize requested while hidden may not take immediately. The
// negotiation protocol retries with a bounded budget and a
// "hide, reposition off-screen, show, force-resize" fallback sequence.

const (
	negotiationAttempts = 4
	offscreenX          = -10000
	offscreenY          = -10000
)

// negotiableWindow is the window surface seen by the size negotiator.
type negotiableWindow interface {
	SetSize(width, height int)
	Size() (width, height int)
	FramebufferSize() (width, height int)
	SetPos(x, y int)
	Show()
	Hide()
	PollEvents()
}

// negotiateFramebufferSize reconciles the window and drawable size with the
// target, returning whether both converged. The window ends hidden again
// regardless of the outcome. direct, when non-nil, is the windowing system's
// lower-level resize primitive tried as a last resort.
func negotiateFramebufferSize(win negotiableWindow, direct func(width, height int), width, height int) bool {
	win.SetSize(width, height)
	if pollForMatch(win, width, height) {
		return true
	}

	// Mapping the window can make the resize take; keep it off-screen so the
	// user never sees it flash.
	win.SetPos(offscreenX, offscreenY)
	win.Show()
	matched := pollForMatch(win, width, height)
	win.Hide()
	if matched {
		return true
	}

	if direct != nil {
		direct(width, height)
		win.PollEvents()
	}

	return sizesMatch(win, width, height)
}

func pollForMatch(win negotiableWindow, width, height int) bool {
	for attempt := 0; attempt < negotiationAttempts; attempt++ {
		win.PollEvents()
		if sizesMatch(win, width, height) {
			return true
		}
	}
	return false
}

func sizesMatch(win negotiableWindow, width, height int) bool {
	winW, winH := win.Size()
	fbW, fbH := win.FramebufferSize()
	return winW == width && winH == height && fbW == width && fbH == height
}

// EnsureFramebufferSize implements the negotiated-resize capability: it
// drives the retry protocol above and logs a final mismatch at error level.
// A mismatch is not fatal; rendering continues at the granted size and the
// readback path clamps.
func (d *Driver) EnsureFramebufferSize(width, height int) {
	win := glfwNegotiable{d.window}

	if negotiateFramebufferSize(win, d.directResize, width, height) {
		d.log.Debug().Int("width", width).Int("height", height).Msg("framebuffer size confirmed")
		return
	}

	winW, winH := win.Size()
	fbW, fbH := win.FramebufferSize()
	d.log.Error().
		Int("requested_width", width).Int("requested_height", height).
		Int("window_width", winW).Int("window_height", winH).
		Int("drawable_width", fbW).Int("drawable_height", fbH).
		Msg("framebuffer size mismatch after negotiation, continuing at granted size")
}

// glfwNegotiable adapts the GLFW window to the negotiator.
type glfwNegotiable struct {
	window *glfw.Window
}

func (w glfwNegotiable) SetSize(width, height int)   { w.window.SetSize(width, height) }
func (w glfwNegotiable) Size() (int, int)            { return w.window.GetSize() }
func (w glfwNegotiable) FramebufferSize() (int, int) { return w.window.GetFramebufferSize() }
func (w glfwNegotiable) SetPos(x, y int)             { w.window.SetPos(x, y) }
func (w glfwNegotiable) Show()                       { w.window.Show() }
func (w glfwNegotiable) Hide()                       { w.window.Hide() }
func (w glfwNegotiable) PollEvents()                 { glfw.PollEvents() }
