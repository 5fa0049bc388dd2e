// Package timeparse converts the heterogeneous timestamp representations
// found across forensic artifact feathers — ISO-8601 strings, locale-specific
// calendar strings, compact digit strings, UNIX epoch numbers, and Windows
// FILETIME ticks — into a single canonical UTC instant.
//
// A parse failure is never an error in the Go sense: Parse returns ok=false
// and the caller treats the record as having no timestamp, exactly as the
// forensic correlation engines require (malformed timestamps are counted,
// never fatal).
package timeparse
