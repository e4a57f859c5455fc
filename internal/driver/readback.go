package driver

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// readbackSizes deduplicates mismatch logging across frames. Instance-scoped
// so it resets together with the driver and never leaks across instances.
type readbackSizes struct {
	active bool
	fbW    int
	fbH    int
	fullW  int
	fullH  int
	readW  int
	readH  int
}

func (d *Driver) readback() error {
	fbW, fbH := d.window.GetFramebufferSize()
	fullW, fullH := d.out.FullSize()
	readW, readH := min(fbW, fullW), min(fbH, fullH)

	d.noteReadbackSizes(fbW, fbH, fullW, fullH, readW, readH)

	return readComposite(d.out.ImageBuffer(), readW, readH, fullW, fullH,
		d.glReadInto(d.out.ImageBuffer(), fullW))
}

// readComposite fills buf with the drawable contents clamped to the
// composite size. On a partial read the buffer is zeroed first so stale
// edges never show previous-frame pixels; the read itself must keep row
// stride at the composite full width so the buffer layout stays consistent.
func readComposite(buf []byte, readW, readH, fullW, fullH int, read func(width, height int) error) error {
	if readW <= 0 || readH <= 0 || len(buf) == 0 {
		clear(buf)
		return nil
	}

	if readW != fullW || readH != fullH {
		clear(buf)
	}

	return read(readW, readH)
}

// glReadInto returns the BGRA pixel read with packed-row stride forced to
// the composite full width, restoring the previous pack state afterwards.
func (d *Driver) glReadInto(buf []byte, fullW int) func(width, height int) error {
	return func(width, height int) error {
		var previous int32
		gl.GetIntegerv(gl.PACK_ROW_LENGTH, &previous)
		gl.PixelStorei(gl.PACK_ROW_LENGTH, int32(fullW))
		gl.ReadPixels(0, 0, int32(width), int32(height), gl.BGRA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
		gl.PixelStorei(gl.PACK_ROW_LENGTH, previous)

		if code := gl.GetError(); code != gl.NO_ERROR {
			return fmt.Errorf("pixel readback failed: gl error 0x%04x (read %dx%d stride %d)",
				code, width, height, fullW)
		}
		return nil
	}
}

// noteReadbackSizes logs a clamped readback once per distinct size
// combination, and once more when sizes match again.
func (d *Driver) noteReadbackSizes(fbW, fbH, fullW, fullH, readW, readH int) {
	current := readbackSizes{
		active: readW != fullW || readH != fullH,
		fbW:    fbW, fbH: fbH,
		fullW: fullW, fullH: fullH,
		readW: readW, readH: readH,
	}

	if current.active {
		if current != d.mismatch {
			d.log.Error().
				Str("drawable", fmt.Sprintf("%dx%d", fbW, fbH)).
				Str("composite", fmt.Sprintf("%dx%d", fullW, fullH)).
				Str("read", fmt.Sprintf("%dx%d", readW, readH)).
				Msg("readback clamped: drawable smaller than composite")
		}
	} else if d.mismatch.active {
		d.log.Info().
			Str("drawable", fmt.Sprintf("%dx%d", fbW, fbH)).
			Str("composite", fmt.Sprintf("%dx%d", fullW, fullH)).
			Msg("readback sizes match again")
	}

	d.mismatch = current
}
