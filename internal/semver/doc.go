// Package semver models versions of the managed database server and scrapes
// them out of remote directory listings.
//
// The server follows the even/odd convention: an even minor component marks a
// stable series, an odd one a development series. Release candidates carry an
// "rc" tag and order before the final release of the same triple.
package semver
