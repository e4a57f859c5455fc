// Package driver owns the GL context and host window and runs the frame
// pump. Everything here is single-threaded: the caller's loop, the readback,
// the present and the pacing sleep all run on the locked main thread.
package driver

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"

	"github.com/Acters/linux-wallpaperengine/internal/output"
)

// Renderer is the external scene renderer, invoked once per viewport per
// frame. It shares the frame thread and must not block indefinitely.
type Renderer interface {
	Update(viewport *output.Viewport)
}

// Options configure the host window.
type Options struct {
	Title string
	// Background hides the window; rendered pixels reach the screen through
	// the output's compositing backend instead.
	Background bool
	// Floating requests an undecorated always-on-top window (window mode).
	Floating bool
	Width    int
	Height   int
	// MaximumFPS caps the frame rate for the process lifetime.
	MaximumFPS int
}

// Driver drives one hidden (background mode) or visible (window mode) GLFW
// window with an OpenGL 3.3 core context.
type Driver struct {
	log      zerolog.Logger
	window   *glfw.Window
	out      output.Output
	renderer Renderer

	frameCounter uint32
	minFrameTime float64
	directResize func(width, height int)
	mismatch     readbackSizes
}

// New initializes GLFW and creates the window and context. The window starts
// hidden; its initial size is irrelevant in background mode since geometry
// setup renegotiates it. Failure here is fatal.
func New(opts Options, log zerolog.Logger) (*Driver, error) {
	if opts.MaximumFPS <= 0 {
		return nil, fmt.Errorf("maximum fps must be positive, got %d", opts.MaximumFPS)
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHintString(glfw.X11ClassName, "linux-wallpaperengine")
	glfw.WindowHintString(glfw.X11InstanceName, "linux-wallpaperengine")

	if opts.Floating && !opts.Background {
		glfw.WindowHint(glfw.Resizable, glfw.False)
		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Floating, glfw.True)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 640, 480
	}

	window, err := glfw.CreateWindow(width, height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("initialize opengl: %w", err)
	}

	return &Driver{
		log:          log,
		window:       window,
		minFrameTime: 1.0 / float64(opts.MaximumFPS),
	}, nil
}

// Bind attaches the output and the scene renderer. Must be called before the
// first DispatchEventQueue.
func (d *Driver) Bind(out output.Output, renderer Renderer) {
	d.out = out
	d.renderer = renderer
}

// NativeWindow returns the X11 window id backing the context.
func (d *Driver) NativeWindow() uint32 {
	return uint32(d.window.GetX11Window())
}

// InstallDirectResize registers the output's raw resize primitive for the
// size negotiator.
func (d *Driver) InstallDirectResize(fn func(width, height int)) {
	d.directResize = fn
}

// Show maps the window (window mode only).
func (d *Driver) Show() { d.window.Show() }

// OnFramebufferResize registers a drawable-size callback (window mode).
func (d *Driver) OnFramebufferResize(fn func(width, height int)) {
	d.window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		fn(w, h)
	})
}

// CloseRequested is the cooperative cancellation flag, checked by the caller
// between frames.
func (d *Driver) CloseRequested() bool { return d.window.ShouldClose() }

// RequestClose asks the frame loop to stop after the current frame.
func (d *Driver) RequestClose() { d.window.SetShouldClose(true) }

// FrameCounter returns the number of presented frames.
func (d *Driver) FrameCounter() uint32 { return d.frameCounter }

// RenderTime returns seconds since driver initialization.
func (d *Driver) RenderTime() float64 { return glfw.GetTime() }

// DispatchEventQueue runs one frame: clear, render every viewport, read the
// composite back when the output needs raw pixels, present, swap, poll
// events and pace to the frame-rate ceiling.
func (d *Driver) DispatchEventQueue() error {
	start := glfw.GetTime()

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	for _, viewport := range d.out.Viewports() {
		d.renderer.Update(viewport)
	}

	if d.out.HasImageBuffer() {
		if err := d.readback(); err != nil {
			// A device-level read error means the context is no longer
			// consistent; no partial-read recovery is attempted.
			return err
		}
	}

	if err := d.out.UpdateRender(); err != nil {
		return err
	}

	d.window.SwapBuffers()
	glfw.PollEvents()
	d.frameCounter++

	if pause := frameSleep(d.minFrameTime, glfw.GetTime()-start); pause > 0 {
		time.Sleep(pause)
	}

	return nil
}

// frameSleep returns how long the pump must pause so the frame takes at least
// minFrameTime seconds. Zero when the frame already ran long.
func frameSleep(minFrameTime, elapsed float64) time.Duration {
	if elapsed >= minFrameTime {
		return 0
	}
	return time.Duration((minFrameTime - elapsed) * float64(time.Second))
}

// Close destroys the window and terminates GLFW.
func (d *Driver) Close() {
	d.window.Destroy()
	glfw.Terminate()
}
