package main

import (
	"hash/fnv"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Acters/linux-wallpaperengine/internal/driver"
	"github.com/Acters/linux-wallpaperengine/internal/output"
)

// demoRenderer stands in for the scene renderer: it fills each viewport with
// a slowly cycling color, phase-shifted per output, so the compositing path
// is visible end to end on every monitor.
type demoRenderer struct {
	drv *driver.Driver
}

func newDemoRenderer(drv *driver.Driver) *demoRenderer {
	return &demoRenderer{drv: drv}
}

func (r *demoRenderer) Update(viewport *output.Viewport) {
	t := r.drv.RenderTime()
	phase := float64(nameHash(viewport.Name)%360) * math.Pi / 180

	red := float32(0.5 + 0.5*math.Sin(t*0.3+phase))
	green := float32(0.5 + 0.5*math.Sin(t*0.3+phase+2*math.Pi/3))
	blue := float32(0.5 + 0.5*math.Sin(t*0.3+phase+4*math.Pi/3))

	rect := viewport.Rect
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(int32(rect.X), int32(rect.Y), int32(rect.Width), int32(rect.Height))
	gl.ClearColor(red, green, blue, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}
