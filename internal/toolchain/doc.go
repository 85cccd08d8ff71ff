// Package toolchain is the narrow boundary to external processes: the source
// build tool and the server binary probed for its version. It neither
// interprets nor validates the arguments it is given.
package toolchain
