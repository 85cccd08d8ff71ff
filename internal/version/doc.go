// Package version exposes build metadata for mongovm itself.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. This is the
// version of the tool, not of any managed server installation.
package version
