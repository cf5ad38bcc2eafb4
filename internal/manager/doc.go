// Package manager owns the identity and lifecycle of loaded modules. It is the
// registry that maps handles to engine models and the dispatcher that executes
// load, forward and destroy commands against the engine. Files by concern:
//
//   - manager.go: Manager type, constructor, Execute, Close and simple getters.
//   - config.go: ManagerConfig and package defaults.
//   - types.go: registry entry.
//   - errors.go: error types, Kind mapping and IsX helpers.
//   - load.go, forward.go, destroy.go: the three commands.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors.
//   - status_report.go, sanity.go: read-only views for the HTTP layer.
//
// Concurrency: one RWMutex guards the handle map and counters. It is never held
// while the engine loads, runs or releases a model. Forward pins its entry with
// a wait group taken under the read lock; Destroy removes the entry under the
// write lock and waits for pinned forwards before releasing the model, so a
// model is released exactly once and never while it is running.
//
// Handles come from a counter that starts at 1 and only grows, so a destroyed
// handle never resolves again.
package manager
