// Package catalog scrapes the remote directory listing for available server
// versions and resolves symbolic targets like "latest" and "stable".
//
// The listing is arbitrary HTML consumed by pattern, not a structured
// document; the scraping boundary is kept to one function so it could be
// swapped for a structured API without touching the rest of the core.
// A catalog snapshot is a point-in-time view: nothing is cached between
// queries and transport failures propagate as FetchError with no retries.
package catalog
