package cordz

// Version information for the cord tracking registry.
const (
	// Version is the current version of the cordz runtime.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// RuntimeInfo provides runtime information about the tracking
// registry.
type RuntimeInfo struct {
	// Version is the runtime version string.
	Version string

	// Enabled indicates whether cord profiling is active.
	Enabled bool

	// SampleRate is the effective sampling interval (1 in SampleRate
	// new cords are tracked while profiling is enabled).
	SampleRate int64
}

// GetInfo returns information about the tracking registry.
//
// Example:
//
//	ri := cordz.GetInfo()
//	fmt.Printf("cordz %s (enabled=%v)\n", ri.Version, ri.Enabled)
func GetInfo() RuntimeInfo {
	return RuntimeInfo{
		Version:    Version,
		Enabled:    Enabled(),
		SampleRate: SampleRate(),
	}
}
