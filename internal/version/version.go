// Package version contains the lbprobe version.
package version

// Version is the software version.
const Version = "0.1.0"
