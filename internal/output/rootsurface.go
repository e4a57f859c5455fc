package output

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"
)

// rootSurface implements the RootSurfaceOnly strategy: one backing pixmap
// sized to the whole root window, published as the desktop background and
// advertised through _XROOTPMAP_ID / ESETROOT_PMAP_ID so external compositors
// pick it up.
type rootSurface struct {
	conn       *xgb.Conn
	screen     *xproto.ScreenInfo
	root       xproto.Window
	rootWidth  int
	rootHeight int
	log        zerolog.Logger

	pixmap       xproto.Pixmap
	gc           xproto.Gcontext
	composite    CompositeRect
	propRoot     xproto.Atom
	propEsetroot xproto.Atom
	maxPutBytes  int
}

func newRootSurface(conn *xgb.Conn, screen *xproto.ScreenInfo, log zerolog.Logger) *rootSurface {
	return &rootSurface{
		conn:       conn,
		screen:     screen,
		root:       screen.Root,
		rootWidth:  int(screen.WidthInPixels),
		rootHeight: int(screen.HeightInPixels),
		log:        log,
	}
}

func (s *rootSurface) setup(layout *Layout) error {
	s.composite = layout.Composite

	var err error
	if s.propRoot, err = internAtom(s.conn, atomRootPixmap); err != nil {
		return err
	}
	if s.propEsetroot, err = internAtom(s.conn, atomEsetrootPixmap); err != nil {
		return err
	}

	pixmap, err := xproto.NewPixmapId(s.conn)
	if err != nil {
		return fmt.Errorf("allocate pixmap id: %w", err)
	}
	if err := xproto.CreatePixmapChecked(s.conn, s.screen.RootDepth, pixmap,
		xproto.Drawable(s.root), uint16(s.rootWidth), uint16(s.rootHeight)).Check(); err != nil {
		return fmt.Errorf("create background pixmap: %w", err)
	}
	s.pixmap = pixmap

	gc, err := xproto.NewGcontextId(s.conn)
	if err != nil {
		return fmt.Errorf("allocate gc id: %w", err)
	}
	if err := xproto.CreateGCChecked(s.conn, gc, xproto.Drawable(pixmap),
		xproto.GcForeground, []uint32{s.screen.BlackPixel}).Check(); err != nil {
		return fmt.Errorf("create gc: %w", err)
	}
	s.gc = gc

	// Requests are capped by the server; PutImage data is split into row
	// chunks that stay under the limit.
	s.maxPutBytes = int(xproto.Setup(s.conn).MaximumRequestLength)*4 - 1024

	s.preserveExistingBackground()

	if err := xproto.ChangeWindowAttributesChecked(s.conn, s.root,
		xproto.CwBackPixmap, []uint32{uint32(pixmap)}).Check(); err != nil {
		return fmt.Errorf("set root background pixmap: %w", err)
	}

	s.publishProperties()
	return nil
}

// preserveExistingBackground copies the previous wallpaper into the new
// pixmap so monitors outside the composite rectangle keep their content.
// Best effort: an incompatible depth or missing pixmap means black fill.
func (s *rootSurface) preserveExistingBackground() {
	prior := s.findRootPixmap(s.propRoot)
	if prior == 0 {
		prior = s.findRootPixmap(s.propEsetroot)
	}

	if prior != 0 {
		geom, err := xproto.GetGeometry(s.conn, xproto.Drawable(prior)).Reply()
		if err == nil && geom.Depth == s.screen.RootDepth {
			copyW := min(int(geom.Width), s.rootWidth)
			copyH := min(int(geom.Height), s.rootHeight)
			if copyW != s.rootWidth || copyH != s.rootHeight {
				s.fillBlack()
			}
			xproto.CopyArea(s.conn, xproto.Drawable(prior), xproto.Drawable(s.pixmap),
				s.gc, 0, 0, 0, 0, uint16(copyW), uint16(copyH))
			s.log.Debug().Msg("preserved existing root pixmap")
			return
		}
		s.log.Debug().Msg("existing root pixmap incompatible, filling black")
	}

	s.fillBlack()
}

func (s *rootSurface) findRootPixmap(prop xproto.Atom) xproto.Pixmap {
	reply, err := xproto.GetProperty(s.conn, false, s.root, prop,
		xproto.AtomPixmap, 0, 1).Reply()
	if err != nil || reply.Format != 32 || reply.ValueLen != 1 {
		return 0
	}
	return xproto.Pixmap(xgb.Get32(reply.Value))
}

func (s *rootSurface) fillBlack() {
	xproto.PolyFillRectangle(s.conn, xproto.Drawable(s.pixmap), s.gc,
		[]xproto.Rectangle{{X: 0, Y: 0, Width: uint16(s.rootWidth), Height: uint16(s.rootHeight)}})
}

// publishProperties re-asserts the two background-identification properties.
// Compositors may require this on every frame, not just once.
func (s *rootSurface) publishProperties() {
	value := atom32(uint32(s.pixmap))
	xproto.ChangeProperty(s.conn, xproto.PropModeReplace, s.root, s.propRoot,
		xproto.AtomPixmap, 32, 1, value)
	xproto.ChangeProperty(s.conn, xproto.PropModeReplace, s.root, s.propEsetroot,
		xproto.AtomPixmap, 32, 1, value)
}

func (s *rootSurface) present(img []byte) error {
	s.putComposite(img)
	s.publishProperties()

	// Only the composite rectangle is marked dirty; clearing the whole root
	// window causes full-desktop redraw storms on multi-head setups. The
	// checked request doubles as the per-frame synchronization point.
	return xproto.ClearAreaChecked(s.conn, true, s.root,
		int16(s.composite.OffsetX), int16(s.composite.OffsetY),
		uint16(s.composite.FullWidth), uint16(s.composite.FullHeight)).Check()
}

// putComposite uploads the full composite image into the pixmap at its
// global offset, chunked by rows to respect the server request size limit.
func (s *rootSurface) putComposite(img []byte) {
	putImageRows(s.conn, xproto.Drawable(s.pixmap), s.gc, s.screen.RootDepth,
		s.composite.FullWidth, s.composite.OffsetX, s.composite.OffsetY, img, s.maxPutBytes)
}

func (s *rootSurface) teardown() {
	if s.gc != 0 {
		xproto.FreeGC(s.conn, s.gc)
		s.gc = 0
	}
	if s.pixmap != 0 {
		xproto.FreePixmap(s.conn, s.pixmap)
		s.pixmap = 0
	}
}

// putImageRows issues one or more PutImage requests for packed BGRA rows of
// the given width, splitting so each request stays under maxBytes.
func putImageRows(conn *xgb.Conn, drawable xproto.Drawable, gc xproto.Gcontext,
	depth byte, width, dstX, dstY int, rows []byte, maxBytes int) {
	rowBytes := width * 4
	if rowBytes == 0 || len(rows) == 0 {
		return
	}

	rowsPerChunk := max(1, maxBytes/rowBytes)
	totalRows := len(rows) / rowBytes

	for row := 0; row < totalRows; row += rowsPerChunk {
		count := min(rowsPerChunk, totalRows-row)
		xproto.PutImage(conn, xproto.ImageFormatZPixmap, drawable, gc,
			uint16(width), uint16(count),
			int16(dstX), int16(dstY+row),
			0, depth,
			rows[row*rowBytes:(row+count)*rowBytes])
	}
}
