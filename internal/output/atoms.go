package output

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Root-window properties conventionally identifying the current background
// pixmap. Compositors such as picom watch these; without them the background
// gets cleared by other desktop programs.
const (
	atomRootPixmap     = "_XROOTPMAP_ID"
	atomEsetrootPixmap = "ESETROOT_PMAP_ID"

	atomWindowType        = "_NET_WM_WINDOW_TYPE"
	atomWindowTypeDesktop = "_NET_WM_WINDOW_TYPE_DESKTOP"
	atomWMState           = "_NET_WM_STATE"
	atomWMStateBelow      = "_NET_WM_STATE_BELOW"
	atomWMStateSkipTask   = "_NET_WM_STATE_SKIP_TASKBAR"
	atomWMStateSkipPager  = "_NET_WM_STATE_SKIP_PAGER"
)

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %s: %w", name, err)
	}
	return reply.Atom, nil
}

// atom32 encodes a single 32-bit property value in connection byte order.
func atom32(v uint32) []byte {
	buf := make([]byte, 4)
	xgb.Put32(buf, v)
	return buf
}

// atomList encodes a list of atoms for a format-32 ATOM property.
func atomList(atoms ...xproto.Atom) []byte {
	buf := make([]byte, 4*len(atoms))
	for i, a := range atoms {
		xgb.Put32(buf[i*4:], uint32(a))
	}
	return buf
}
