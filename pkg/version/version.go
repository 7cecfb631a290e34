package version

// Set at build time via -ldflags "-X".
var (
	Version   = "0.1.0"
	GitCommit = "dev"
	BuildDate = "unknown"
)

// String returns a human-readable version string.
func String() string {
	return "basicskit " + Version + " (" + GitCommit + ", " + BuildDate + ")"
}
