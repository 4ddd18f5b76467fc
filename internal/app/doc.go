// Package app wires the AuQA client together and runs it.
//
// # Overview
//
// This package is the composition root. NewRuntime builds the HTTP client,
// the persisted state store, the session clock, the clip player and the
// export writer, and hands them to an Engine. Run adds file logging and a
// health pre-flight, starts the Engine and gives the terminal to the UI.
//
// # Components
//
//   - app.go: Run and NewRuntime
//   - engine.go: Engine, the API the presentation layer and CLI use
//   - scheduler.go: one non-overlapping timer line per poll target
//   - queue_sync.go: queue counts scoped to the session anchor
//   - files_sync.go: processed-file list and reprocess detection
//   - reports.go: report fetch, normalization and selection hand-off
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read config.toml
//	       ├─────> logging.New()        File logger
//	       ├─────> NewRuntime()         Client, prefs, clock, player, writer
//	       ├─────> checkHealth()        Warn if the server is down
//	       ├─────> Engine.Start()       Launch both timer lines
//	       └─────> ui.Run()             Bubble Tea program (blocks)
//
//	Queue line (fixed interval):      Files line (active/idle interval):
//	┌───────────────────────────┐    ┌────────────────────────────────┐
//	│ clock.Refresh()           │    │ FetchFiles()                   │
//	│ FetchQueueStatus(anchor)  │    │ store.UpdateFiles()            │
//	│ store.UpdateQueue(epoch)  │    │ reprocessed? → settle → reload │
//	└───────────────────────────┘    └────────────────────────────────┘
//
// # Polling Behavior
//
// Each line runs its tick to completion, then waits for the interval chosen
// by its policy, so a slow response delays the next tick instead of
// overlapping it. The queue line polls every queue_poll_seconds. The files
// line polls every files_active_poll_seconds while the last queue status
// shows queued or running jobs, and every files_idle_poll_seconds
// otherwise.
//
// Ticks run on a context that survives Stop. Nothing is aborted mid-flight;
// the store drops results that arrive after Stop, after a session reset, or
// after the selection moved on.
//
// # Error Handling
//
// Poll failures are logged at warn and recorded in the store. Two queue
// failures in a row clear the counts to zero; the file list keeps its last
// good value. Actions the user starts (delete, export, upload, retry) return
// their errors to the caller. A report that fails to load is shown as an
// empty report.
//
// # Session Reset
//
// ResetSession writes a new anchor and clears the queue counts in one
// store critical section, so no snapshot pairs the new anchor with old
// counts. The queue line also adopts an anchor written by another process,
// such as `auqa session reset` run while the TUI is open.
package app
