// Package installer orchestrates building a server version from source.
//
// An install runs a fixed pipeline: resolve the target, skip straight to
// activation when the store already has it, otherwise stream the source
// archive through extraction into a per-invocation temporary directory, run
// the external build tool with the user's options plus the install prefix,
// rename the output into the store and activate it. Failures before
// placement leave no store entry; an activation failure leaves the version
// installed but not switched-to.
package installer
