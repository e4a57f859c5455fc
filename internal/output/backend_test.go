package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBackendKind(t *testing.T) {
	tests := []struct {
		name    string
		present bool
		major   uint16
		minor   uint16
		want    BackendKind
	}{
		{"absent", false, 0, 0, RootSurfaceOnly},
		{"present v1.1", true, 1, 1, RootSurfaceOnly},
		{"present v2.0", true, 2, 0, PerOutputSurfaces},
		{"present v2.3", true, 2, 3, PerOutputSurfaces},
		{"present v3.0", true, 3, 0, PerOutputSurfaces},
		{"version reported but absent", false, 2, 0, RootSurfaceOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectBackendKind(tt.present, tt.major, tt.minor))
		})
	}
}
