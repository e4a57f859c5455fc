package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameSleepPadsShortFrames(t *testing.T) {
	// 30 fps budget, frame finished in 10ms: pause for the remainder.
	pause := frameSleep(1.0/30, 0.010)

	assert.InDelta(t, (time.Second/30 - 10*time.Millisecond).Seconds(), pause.Seconds(), 0.0001)
}

func TestFrameSleepNeverNegative(t *testing.T) {
	assert.Zero(t, frameSleep(1.0/30, 0.050), "long frame must not sleep")
	assert.Zero(t, frameSleep(1.0/30, 1.0/30), "exact frame must not sleep")
}

func TestFrameSleepBoundsFrameRate(t *testing.T) {
	const minFrameTime = 1.0 / 60

	for _, elapsed := range []float64{0, 0.001, 0.009, 0.016, 0.040} {
		pause := frameSleep(minFrameTime, elapsed)
		total := elapsed + pause.Seconds()
		assert.GreaterOrEqual(t, total, minFrameTime-1e-9, "elapsed %v", elapsed)
	}
}
