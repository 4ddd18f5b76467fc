// Package config loads the AuQA client configuration file.
//
// # Configuration Discovery
//
// Load resolves the config path in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/auqa/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults per field
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:5001"
//	state_path = "~/.local/state/auqa/state.toml"
//	export_dir = "~/Downloads/auqa"
//	log_dir = "~/.local/share/auqa/logs"
//	log_level = "info"
//	log_format = "console"
//	queue_poll_seconds = 2
//	files_active_poll_seconds = 3
//	files_idle_poll_seconds = 15
//	reload_settle_ms = 500
//	export_stagger_ms = 200
//	player_command = ["ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"]
//
// Every field is optional. Tilde expansion is applied to path fields and
// non-positive intervals are replaced by their defaults.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error so the
// client works against a local server without any setup.
package config
