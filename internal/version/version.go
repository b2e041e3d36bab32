// ABOUTME: Version and product information
// ABOUTME: Version can be overridden at build time with -ldflags
package version

// Product is the program name shown by -version and in logs
const Product = "soundlevel"

// Version is set at build time with -ldflags "-X .../internal/version.Version=..."
var Version = "0.1.0"

// String returns the product and version
func String() string {
	return Product + " " + Version
}
