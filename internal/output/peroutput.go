package output

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"
)

// outputSurface is one dedicated overlay window with its draw context and a
// scratch buffer holding that viewport's sub-rectangle of the composite image.
type outputSurface struct {
	viewport *Viewport
	window   xproto.Window
	gc       xproto.Gcontext
	scratch  []byte
}

// perOutputSurfaces implements the PerOutputSurfaces strategy: one
// override-redirect, input-transparent desktop-type window per requested
// output, stacked below normal windows. The legacy shared root surface is
// still updated every frame for compositors that only understand the
// single-surface convention.
type perOutputSurfaces struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	log    zerolog.Logger

	legacy    *rootSurface
	surfaces  map[string]*outputSurface
	composite CompositeRect
}

func newPerOutputSurfaces(conn *xgb.Conn, screen *xproto.ScreenInfo, log zerolog.Logger) *perOutputSurfaces {
	return &perOutputSurfaces{
		conn:   conn,
		screen: screen,
		log:    log,
		legacy: newRootSurface(conn, screen, log),
	}
}

func (p *perOutputSurfaces) setup(layout *Layout) error {
	if err := p.legacy.setup(layout); err != nil {
		return err
	}
	p.composite = layout.Composite

	typeAtoms, err := p.windowMetadataAtoms()
	if err != nil {
		return err
	}

	p.surfaces = make(map[string]*outputSurface, len(layout.Viewports))
	for name, vp := range layout.Viewports {
		surface, err := p.createSurface(vp, typeAtoms)
		if err != nil {
			p.teardown()
			return fmt.Errorf("create surface for %s: %w", name, err)
		}
		p.surfaces[name] = surface
	}

	return nil
}

type metadataAtoms struct {
	windowType  xproto.Atom
	typeDesktop xproto.Atom
	state       xproto.Atom
	stateBelow  xproto.Atom
	skipTaskbar xproto.Atom
	skipPager   xproto.Atom
}

func (p *perOutputSurfaces) windowMetadataAtoms() (metadataAtoms, error) {
	var atoms metadataAtoms
	for _, entry := range []struct {
		dst  *xproto.Atom
		name string
	}{
		{&atoms.windowType, atomWindowType},
		{&atoms.typeDesktop, atomWindowTypeDesktop},
		{&atoms.state, atomWMState},
		{&atoms.stateBelow, atomWMStateBelow},
		{&atoms.skipTaskbar, atomWMStateSkipTask},
		{&atoms.skipPager, atomWMStateSkipPager},
	} {
		a, err := internAtom(p.conn, entry.name)
		if err != nil {
			return atoms, err
		}
		*entry.dst = a
	}
	return atoms, nil
}

// createSurface builds one overlay window at the viewport's global rectangle:
// unmanaged by the window manager, tagged as a desktop window, excluded from
// task switchers and pagers, with an empty input region so it never
// intercepts pointer or keyboard events.
func (p *perOutputSurfaces) createSurface(vp *Viewport, atoms metadataAtoms) (*outputSurface, error) {
	wid, err := xproto.NewWindowId(p.conn)
	if err != nil {
		return nil, fmt.Errorf("allocate window id: %w", err)
	}

	globalX := vp.Rect.X + p.composite.OffsetX
	globalY := vp.Rect.Y + p.composite.OffsetY

	// Value list order follows the bit positions of the mask, so back_pixel
	// comes before override_redirect.
	err = xproto.CreateWindowChecked(p.conn, p.screen.RootDepth, wid, p.screen.Root,
		int16(globalX), int16(globalY),
		uint16(vp.Rect.Width), uint16(vp.Rect.Height), 0,
		xproto.WindowClassInputOutput, p.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		[]uint32{p.screen.BlackPixel, 1}).Check()
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	xproto.ChangeProperty(p.conn, xproto.PropModeReplace, wid, atoms.windowType,
		xproto.AtomAtom, 32, 1, atomList(atoms.typeDesktop))
	xproto.ChangeProperty(p.conn, xproto.PropModeReplace, wid, atoms.state,
		xproto.AtomAtom, 32, 3,
		atomList(atoms.stateBelow, atoms.skipTaskbar, atoms.skipPager))

	// Empty input region: pointer and keyboard events pass through.
	shape.Rectangles(p.conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted,
		wid, 0, 0, nil)

	xproto.ConfigureWindow(p.conn, wid, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeBelow})

	gc, err := xproto.NewGcontextId(p.conn)
	if err != nil {
		xproto.DestroyWindow(p.conn, wid)
		return nil, fmt.Errorf("allocate gc id: %w", err)
	}
	if err := xproto.CreateGCChecked(p.conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		xproto.DestroyWindow(p.conn, wid)
		return nil, fmt.Errorf("create gc: %w", err)
	}

	xproto.MapWindow(p.conn, wid)

	return &outputSurface{
		viewport: vp,
		window:   wid,
		gc:       gc,
		scratch:  make([]byte, vp.Rect.Width*vp.Rect.Height*4),
	}, nil
}

func (p *perOutputSurfaces) present(img []byte) error {
	stride := p.composite.FullWidth * 4

	for _, surface := range p.surfaces {
		vp := surface.viewport
		rowBytes := vp.Rect.Width * 4
		for y := 0; y < vp.Rect.Height; y++ {
			src := (vp.Rect.Y+y)*stride + vp.Rect.X*4
			copy(surface.scratch[y*rowBytes:(y+1)*rowBytes], img[src:src+rowBytes])
		}
		putImageRows(p.conn, xproto.Drawable(surface.window), surface.gc,
			p.screen.RootDepth, vp.Rect.Width, 0, 0, surface.scratch, p.legacy.maxPutBytes)
	}

	return p.legacy.present(img)
}

func (p *perOutputSurfaces) teardown() {
	for _, surface := range p.surfaces {
		if surface.gc != 0 {
			xproto.FreeGC(p.conn, surface.gc)
		}
		if surface.window != 0 {
			xproto.DestroyWindow(p.conn, surface.window)
		}
	}
	p.surfaces = nil
	p.legacy.teardown()
}
