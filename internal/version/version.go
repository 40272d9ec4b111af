package version

// Version is the current version of findash.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/findash/internal/version.Version=1.2.3"
// The value "main" marks a development build.
var Version = "v0.4.0"

// GetVersion returns the running version.
func GetVersion() string {
	return Version
}
