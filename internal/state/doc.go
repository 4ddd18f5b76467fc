// Package state holds the client's view of the analysis server: queue
// counts, the processed-file list and the selection slot.
//
// # Overview
//
// Three independent poll lines write into one Store and the UI reads
// snapshots of it:
//
//	Queue line:               Files line:              Report loads:
//	┌──────────────────┐     ┌──────────────────┐     ┌──────────────────┐
//	│ FetchQueueStatus │     │ FetchFiles       │     │ FetchReport      │
//	│       ↓          │     │       ↓          │     │       ↓          │
//	│ UpdateQueue()    │     │ UpdateFiles()    │     │ ApplyReport(gen) │
//	└────────┬─────────┘     └────────┬─────────┘     └────────┬─────────┘
//	         └──────────────→  Store (mutex)  ←────────────────┘
//	                                ↓
//	                          Snapshot() → UI
//
// Each line writes only its own slice of the snapshot. There is no ordering
// between lines; last writer wins within a slice.
//
// # Queue Status
//
// UpdateQueue replaces the status wholesale on success. Failures keep the
// previous status until two have happened in a row; then the status is
// cleared to zero counts and IsOffline reports true. ResetQueue clears the
// counts at once and advances an epoch; a poll started before the reset
// carries the old epoch and is dropped, so old-session counts never reappear.
//
// # File List
//
// UpdateFiles runs ReconcileFiles: the held list is replaced only when the
// length differs or a new id appears. An unchanged poll keeps the held list
// and Version, so the UI can skip re-rendering by comparing versions.
//
// Processed dates are compared against the last polled list, not the held
// one, so a reprocess of the selected file is reported exactly once even
// when the held list was not replaced.
//
// # Selection
//
// Select, Reload and ClearSelectionIf bump a generation counter and drop the
// held report in the same critical section. A report fetch carries the
// generation it was started under; ApplyReport discards it if the
// generation has moved on. Selecting the selected file deselects it.
//
// # Liveness
//
// Stop marks the store dead. Every mutation checks this under the lock, so
// a response that arrives after teardown is dropped rather than applied.
//
// # Defensive Copying
//
// Snapshot clones the file list and wraps stored errors. Canonical reports
// are shared by pointer and never modified after they are built.
package state
