// Package config defines the settings shared by mongovm commands and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the store root, the system bin directory, the remote
// index URL, the source tarball template and the build tool invocation.
package config
