package output

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"
)

// FaultHandler is invoked on a connection-fatal error. It is registered once
// per connection at setup; the default handler performs an in-place reset.
type FaultHandler func(err error)

// X11Output composites rendered frames into the desktop background of the
// requested monitors. It exclusively owns the X connection, the composite
// surface resources and all per-viewport presentation resources, and rebuilds
// all of them on a connection-fatal fault without restarting the process.
type X11Output struct {
	log       zerolog.Logger
	host      Host
	requested []string
	onFault   FaultHandler

	conn        *xgb.Conn
	screen      *xproto.ScreenInfo
	rootWidth   int
	rootHeight  int
	layout      *Layout
	backendKind BackendKind
	backend     backend
	buffer      []byte
}

// NewX11Output connects to the X server, resolves the requested outputs and
// sets up the compositing backend. Failure here is fatal for the process.
func NewX11Output(requested []string, host Host, log zerolog.Logger) (*X11Output, error) {
	o := &X11Output{
		log:       log,
		host:      host,
		requested: append([]string(nil), requested...),
	}
	o.onFault = o.recoverFromFault

	if err := o.setup(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *X11Output) setup() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("open X display: %w", err)
	}
	o.conn = conn
	o.screen = xproto.Setup(conn).DefaultScreen(conn)
	o.rootWidth = int(o.screen.WidthInPixels)
	o.rootHeight = int(o.screen.HeightInPixels)

	o.log.Info().
		Int("root_width", o.rootWidth).
		Int("root_height", o.rootHeight).
		Msg("connected to X server")

	if err := o.resolveGeometry(); err != nil {
		conn.Close()
		o.conn = nil
		return err
	}

	// The host window must escape window manager management in background
	// mode, otherwise the WM repositions and decorates it.
	if xwin := o.host.NativeWindow(); xwin != 0 {
		xproto.ChangeWindowAttributes(conn, xproto.Window(xwin),
			xproto.CwOverrideRedirect, []uint32{1})
	}

	o.backendKind = o.probeBackendKind()
	switch o.backendKind {
	case PerOutputSurfaces:
		o.backend = newPerOutputSurfaces(conn, o.screen, o.log)
	default:
		o.backend = newRootSurface(conn, o.screen, o.log)
	}
	o.log.Info().Stringer("backend", o.backendKind).Msg("presentation backend selected")

	if err := o.backend.setup(o.layout); err != nil {
		conn.Close()
		o.conn = nil
		return fmt.Errorf("backend setup: %w", err)
	}

	// The buffer is always allocated at the requested composite size, even
	// when size negotiation below ends on a smaller granted drawable; the
	// readback path clamps and zero-fills instead.
	o.buffer = make([]byte, o.layout.Composite.FullWidth*o.layout.Composite.FullHeight*4)

	if xwin := o.host.NativeWindow(); xwin != 0 {
		o.host.InstallDirectResize(o.directResize(xproto.Window(xwin)))
	}
	o.host.EnsureFramebufferSize(o.layout.Composite.FullWidth, o.layout.Composite.FullHeight)

	return nil
}

// resolveGeometry runs the geometry resolver, falling back to one
// full-desktop viewport when RandR is unavailable.
func (o *X11Output) resolveGeometry() error {
	if err := randr.Init(o.conn); err != nil {
		o.log.Error().Err(err).Msg("RandR not present, using full-desktop viewport")
		o.layout = fullDesktopLayout(o.rootWidth, o.rootHeight)
		return nil
	}

	screens, err := detectScreens(o.conn, o.screen.Root)
	if err != nil {
		o.log.Error().Err(err).Msg("RandR enumeration failed, using full-desktop viewport")
		o.layout = fullDesktopLayout(o.rootWidth, o.rootHeight)
		return nil
	}

	if len(o.requested) == 0 {
		o.layout = fullDesktopLayout(o.rootWidth, o.rootHeight)
		return nil
	}

	layout, err := ResolveLayout(screens, o.requested)
	if err != nil {
		return err
	}
	o.layout = layout

	for name, vp := range layout.Viewports {
		o.log.Info().
			Str("output", name).
			Stringer("rect", vp.Rect).
			Msg("resolved viewport")
	}
	o.log.Info().
		Int("width", layout.Composite.FullWidth).
		Int("height", layout.Composite.FullHeight).
		Int("offset_x", layout.Composite.OffsetX).
		Int("offset_y", layout.Composite.OffsetY).
		Msg("composite surface")

	return nil
}

// probeBackendKind checks the SHAPE extension once per setup.
func (o *X11Output) probeBackendKind() BackendKind {
	if err := shape.Init(o.conn); err != nil {
		return selectBackendKind(false, 0, 0)
	}
	version, err := shape.QueryVersion(o.conn).Reply()
	if err != nil {
		return selectBackendKind(false, 0, 0)
	}
	return selectBackendKind(true, version.MajorVersion, version.MinorVersion)
}

// directResize is the lower-level resize primitive handed to the size
// negotiator: a raw ConfigureWindow plus a synchronous flush.
func (o *X11Output) directResize(xwin xproto.Window) func(width, height int) {
	conn := o.conn
	return func(width, height int) {
		xproto.ConfigureWindow(conn, xwin,
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
			[]uint32{uint32(width), uint32(height)})
		conn.Sync()
	}
}

func (o *X11Output) Viewports() map[string]*Viewport { return o.layout.Viewports }

func (o *X11Output) FullSize() (int, int) {
	return o.layout.Composite.FullWidth, o.layout.Composite.FullHeight
}

func (o *X11Output) HasImageBuffer() bool { return true }
func (o *X11Output) ImageBuffer() []byte  { return o.buffer }
func (o *X11Output) RenderVFlip() bool    { return false }

// UpdateRender pushes the backing buffer to the screen. Single protocol
// errors are logged and dropped; a connection-fatal error triggers the
// registered fault handler, costing one garbled frame at most.
func (o *X11Output) UpdateRender() error {
	if o.conn == nil {
		return nil
	}

	o.drainEvents()

	err := o.backend.present(o.buffer)
	if err == nil {
		return nil
	}
	if isProtocolError(err) {
		o.log.Debug().Err(err).Msg("recoverable X protocol error during present")
		return nil
	}

	o.onFault(err)
	return nil
}

// drainEvents empties the connection's event queue. Errors queued by
// unchecked requests surface here; they are the expected recoverable kind.
func (o *X11Output) drainEvents() {
	for {
		ev, err := o.conn.PollForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			o.log.Debug().Err(err).Msg("recoverable X protocol error")
		}
	}
}

// recoverFromFault is the default fault handler: tear everything down and
// rebuild from scratch with the same requested-output configuration.
func (o *X11Output) recoverFromFault(cause error) {
	o.log.Error().Err(cause).Msg("fatal X connection error, rebuilding output")

	o.teardown()
	if err := o.setup(); err != nil {
		o.log.Error().Err(err).Msg("output rebuild failed, will retry on next fault")
	}
}

// teardown releases resources leaves-first: per-output surfaces and their
// draw contexts, then the shared surface, then the buffer and connection.
func (o *X11Output) teardown() {
	if o.backend != nil {
		o.backend.teardown()
		o.backend = nil
	}
	o.buffer = nil
	if o.conn != nil {
		o.conn.Close()
		o.conn = nil
	}
}

func (o *X11Output) Close() {
	o.teardown()
}
