// Package store implements the on-disk layout of installed server versions.
//
// Each installed version lives in its own directory under the store root,
// named by its version literal and holding a bin subtree plus a sidecar file
// with the literal build options used to produce it. Placement stages the
// artifact tree and renames it into the final path, so a directory is either
// a complete install or invisible to Has.
package store
