// Package feather provides indexed, filtered, read-only access to a single
// feather database: a normalized SQLite database holding records from one
// forensic artifact source.
//
// Feathers are opened through the pure-Go modernc.org/sqlite driver rather
// than the cgo-based driver used for the results database, since feather
// files are externally produced and the loader should never require a cgo
// toolchain to open them.
package feather
