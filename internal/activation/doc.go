// Package activation determines the active server version and switches it.
//
// The current version is observed, not tracked: the manager executes the live
// binary with a version flag and scrapes the literal from its output, holding
// no cached or persisted "active pointer" that could drift when something
// else mutates the bin directory.
package activation
