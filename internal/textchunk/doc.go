// Package textchunk splits text into bounded-length pieces for stores that
// enforce a per-field character limit.
//
// Cuts prefer whitespace so words survive intact. A single token longer than
// the limit is split by hard cuts that advance exactly the limit. Whitespace
// at a cut point is consumed rather than carried into the next piece, so
// re-joining the pieces with a single space at each soft cut reproduces the
// original text.
package textchunk
