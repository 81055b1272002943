// Package layouts registers the built-in document layouts with the core
// registry. Import this package for its side effects.
package layouts

// Each layout file uses init() to register its layouts.
