package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRead mimics the GL readback: it writes marker bytes for the requested
// width and height with row stride fixed at the composite full width.
func fakeRead(buf []byte, fullW int, marker byte) func(width, height int) error {
	return func(width, height int) error {
		for y := 0; y < height; y++ {
			row := y * fullW * 4
			for x := 0; x < width*4; x++ {
				buf[row+x] = marker
			}
		}
		return nil
	}
}

func fill(buf []byte, b byte) {
	for i := range buf {
		buf[i] = b
	}
}

func TestReadCompositePartialReadZeroesStaleEdges(t *testing.T) {
	const fullW, fullH = 100, 100
	const readW, readH = 80, 100

	buf := make([]byte, fullW*fullH*4)
	fill(buf, 0xAA) // previous-frame garbage

	err := readComposite(buf, readW, readH, fullW, fullH, fakeRead(buf, fullW, 0x01))
	require.NoError(t, err)

	for y := 0; y < fullH; y++ {
		row := y * fullW * 4
		for x := 0; x < fullW; x++ {
			px := buf[row+x*4]
			if x < readW {
				assert.Equal(t, byte(0x01), px, "inside clamped region at (%d,%d)", x, y)
			} else {
				// Outside the clamped region the buffer must be zero, never
				// stale bytes from the previous frame.
				assert.Equal(t, byte(0x00), px, "outside clamped region at (%d,%d)", x, y)
			}
		}
	}
}

func TestReadCompositeFullReadSkipsZeroing(t *testing.T) {
	const fullW, fullH = 16, 8

	buf := make([]byte, fullW*fullH*4)
	fill(buf, 0xAA)

	called := false
	err := readComposite(buf, fullW, fullH, fullW, fullH, func(width, height int) error {
		called = true
		// A full-size read overwrites everything anyway, so the buffer must
		// not have been cleared beforehand.
		assert.Equal(t, byte(0xAA), buf[0])
		assert.Equal(t, fullW, width)
		assert.Equal(t, fullH, height)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestReadCompositeDegenerateReadZeroesEverything(t *testing.T) {
	buf := make([]byte, 4*4*4)
	fill(buf, 0xAA)

	err := readComposite(buf, 0, 4, 4, 4, func(int, int) error {
		t.Fatal("read must not run for a degenerate rectangle")
		return nil
	})
	require.NoError(t, err)

	for i, b := range buf {
		require.Equal(t, byte(0), b, "byte %d", i)
	}
}

func TestReadCompositePropagatesReadError(t *testing.T) {
	buf := make([]byte, 4*4*4)

	err := readComposite(buf, 4, 4, 4, 4, func(int, int) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
