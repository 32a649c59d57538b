// ABOUTME: Version information for the HMICAP tools
// ABOUTME: Reported by the CLI and written to the log at startup
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the tool name shown to users
	Product = "HMICAP Player"

	// Manufacturer identifies the authors
	Manufacturer = "HMICAP Project"
)
