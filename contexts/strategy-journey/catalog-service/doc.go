// Package catalogservice serves the fixed pillar/action catalog of the
// strategy-journey context together with each session's pillar completion
// flags, and seeds the catalog from an operator file.
package catalogservice
