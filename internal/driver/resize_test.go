package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeWindow converges its reported sizes to the requested ones after a
// configurable number of event polls, optionally only while shown or only
// after the direct primitive fired.
type fakeWindow struct {
	requestedW, requestedH int
	reportedW, reportedH   int

	pollsUntilApply int
	applyOnlyShown  bool
	neverApply      bool

	visible   bool
	pollCount int
	showCount int
	hideCount int
}

func (w *fakeWindow) SetSize(width, height int) {
	w.requestedW, w.requestedH = width, height
}

func (w *fakeWindow) Size() (int, int)            { return w.reportedW, w.reportedH }
func (w *fakeWindow) FramebufferSize() (int, int) { return w.reportedW, w.reportedH }
func (w *fakeWindow) SetPos(x, y int)             {}

func (w *fakeWindow) Show() {
	w.visible = true
	w.showCount++
}

func (w *fakeWindow) Hide() {
	w.visible = false
	w.hideCount++
}

func (w *fakeWindow) PollEvents() {
	w.pollCount++
	if w.neverApply {
		return
	}
	if w.applyOnlyShown && !w.visible {
		return
	}
	if w.pollCount >= w.pollsUntilApply {
		w.reportedW, w.reportedH = w.requestedW, w.requestedH
	}
}

// apply is the direct-resize primitive: it takes effect unconditionally.
func (w *fakeWindow) apply(width, height int) {
	if w.neverApply {
		return
	}
	w.reportedW, w.reportedH = width, height
}

func TestNegotiateConvergesWhileHidden(t *testing.T) {
	win := &fakeWindow{pollsUntilApply: 2}

	ok := negotiateFramebufferSize(win, nil, 1920, 1080)

	assert.True(t, ok)
	assert.Zero(t, win.showCount, "must not flash the window when hidden resize works")
	assert.LessOrEqual(t, win.pollCount, negotiationAttempts)
}

func TestNegotiateConvergesOnlyWhenMapped(t *testing.T) {
	win := &fakeWindow{pollsUntilApply: 1, applyOnlyShown: true}

	ok := negotiateFramebufferSize(win, nil, 1920, 1080)

	assert.True(t, ok)
	assert.Equal(t, 1, win.showCount)
	assert.Equal(t, 1, win.hideCount)
	assert.False(t, win.visible, "window must end hidden")
}

func TestNegotiateFallsBackToDirectResize(t *testing.T) {
	win := &fakeWindow{neverApply: true}
	direct := func(width, height int) {
		win.neverApply = false
		win.apply(width, height)
	}

	ok := negotiateFramebufferSize(win, direct, 1920, 1080)

	assert.True(t, ok)
	assert.False(t, win.visible)
}

func TestNegotiateTerminatesWithoutConvergence(t *testing.T) {
	win := &fakeWindow{neverApply: true, reportedW: 640, reportedH: 480}

	ok := negotiateFramebufferSize(win, win.apply, 1920, 1080)

	assert.False(t, ok)
	// Bounded retry budget: 4 hidden polls + 4 mapped polls + 1 after the
	// direct resize.
	assert.LessOrEqual(t, win.pollCount, 2*negotiationAttempts+1)
	assert.False(t, win.visible, "window must end hidden even on failure")
	// The granted size is still reported so rendering can continue.
	gotW, gotH := win.Size()
	assert.Equal(t, 640, gotW)
	assert.Equal(t, 480, gotH)
}
