// Package runtime holds the cross-cutting concerns both correlation engines
// consume but neither owns: progress event delivery, cooperative
// cancellation, a typed error taxonomy with its retry policy, a process-wide
// memory budget, and the window-data store and worker pool that back TWSE's
// parallel window scan. Nothing here knows about wings, feathers, or
// matches; engines depend on runtime, never the reverse.
package runtime
