// Package state persists the run state shared between invocations: the set
// of files already evaluated as the left side of a pair, and the registry of
// chains discovered so far.
//
// Two backends implement Store. The text backend keeps processed.txt and
// chains.txt beside the executable and rewrites them atomically. The SQLite
// backend keeps both in rejoin.db. A Lock guards the state directory so only
// one run mutates it at a time.
package state
