package output

// BackendKind identifies the compositing strategy chosen at setup time.
type BackendKind int

const (
	// RootSurfaceOnly broadcasts one shared backing pixmap as the desktop
	// background.
	RootSurfaceOnly BackendKind = iota
	// PerOutputSurfaces drives one input-transparent overlay window per
	// requested output, while still maintaining the legacy root pixmap.
	PerOutputSurfaces
)

func (k BackendKind) String() string {
	if k == PerOutputSurfaces {
		return "per-output-surfaces"
	}
	return "root-surface-only"
}

// backend is the uniform "push an image into the screen" contract both
// compositing strategies implement. The image buffer is BGRA, packed rows,
// stride equal to the composite full width.
type backend interface {
	setup(layout *Layout) error
	present(img []byte) error
	teardown()
}

// selectBackendKind decides the strategy from the SHAPE extension probe.
// The probe runs once at setup; a runtime loss of the extension is only
// re-evaluated on the next fault-recovery reset.
func selectBackendKind(shapePresent bool, major, minor uint16) BackendKind {
	if shapePresent && major >= 2 {
		return PerOutputSurfaces
	}
	return RootSurfaceOnly
}
