// Package ui provides the terminal user interface for auqa.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds only presentation state (the
// cursor, marks, the focused pane, overlays); everything about the server
// lives behind the Engine interface and reaches the model as snapshots.
//
//	tickMsg ──► fetchSnapshotCmd ──► Engine.Snapshot()
//	                                      │
//	                                      ▼
//	                               snapshotMsg ──► applySnapshot ──► View
//
// User actions that talk to the server (export, delete, upload, reload,
// playback) run as tea.Cmd functions and come back as actionMsg, which is
// shown in the footer. Nothing in Update blocks on the network.
//
// # Layout
//
//   - header.go: status bar (connection, queue progress, session start),
//     command bar and footer
//   - files.go: the processed-file list with marks and relative times
//   - report_view.go: the selected report in a scrolling viewport with a
//     detection cursor for clip playback
//   - modal.go: upload prompt and delete confirmation
//   - help.go: keyboard shortcut overlay
//   - theme.go, style_helpers.go: lipgloss palettes and background helpers
//
// Below LayoutCompactWidth only the focused pane is drawn; tab switches
// between them.
//
// # Key Bindings
//
//   - enter: open the file under the cursor, or close it when already open
//   - m / a: mark one file / mark all
//   - x / X: export the current report / every marked report
//   - d: delete marked files (or the current one) after confirmation
//   - u: upload an audio file
//   - n / N, space: move between detections, play or stop the clip
//   - R: start a new session so queue counts begin from zero
//   - r: reload the file list, e.g. after the initial load failed
//   - T: cycle theme (persisted), h/?: help, q: quit
package ui
