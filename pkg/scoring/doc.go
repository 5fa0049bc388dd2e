// Package scoring computes the weighted composite confidence score for a
// matched feather set. Weight resolution follows a strict
// precedence — wing-local, then case-specific override, then global
// default, then a fixed fallback — so identical inputs always produce
// identical scores regardless of which layer of configuration happened to
// supply a weight.
package scoring
