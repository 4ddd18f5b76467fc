// Command auqa is the terminal client for an AuQA analysis server.
//
// Running auqa with no subcommand opens the interactive UI. The subcommands
// cover the same operations for scripts: listing processed files, printing
// or exporting reports, deleting and uploading files, and inspecting or
// resetting the session that queue counts are measured from.
package main
