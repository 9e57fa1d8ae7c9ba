// Package sqlite persists simulation runs and per-frame scan summaries.
//
// The schema is managed by golang-migrate from the embedded migrations
// directory. The store is written from the tick loop and read by the
// monitor, so every method is safe for concurrent use.
package sqlite
