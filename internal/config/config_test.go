package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}

	wantStatePath, err := ExpandPath(defaultStatePath)
	if err != nil {
		t.Fatalf("ExpandPath(defaultStatePath) returned error: %v", err)
	}
	if cfg.StatePath != wantStatePath {
		t.Fatalf("StatePath = %q, want %q", cfg.StatePath, wantStatePath)
	}
	if cfg.QueuePoll != 2*time.Second {
		t.Fatalf("QueuePoll = %v, want 2s", cfg.QueuePoll)
	}
	if cfg.FilesActivePoll >= cfg.FilesIdlePoll {
		t.Fatalf("FilesActivePoll = %v, want shorter than FilesIdlePoll %v", cfg.FilesActivePoll, cfg.FilesIdlePoll)
	}
	if !reflect.DeepEqual(cfg.PlayerCommand, defaultPlayerCommand) {
		t.Fatalf("PlayerCommand = %v, want %v", cfg.PlayerCommand, defaultPlayerCommand)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  10.0.0.5:9999  "
export_dir = "  ~/reports  "
log_level = " DEBUG "
queue_poll_seconds = 5
files_idle_poll_seconds = 60
export_stagger_ms = 50
player_command = ["mpv", " --no-video ", ""]
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "10.0.0.5:9999" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "10.0.0.5:9999")
	}
	if cfg.ExportDir != filepath.Join(home, "reports") {
		t.Fatalf("ExportDir = %q, want it under HOME %q", cfg.ExportDir, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.QueuePoll != 5*time.Second {
		t.Fatalf("QueuePoll = %v, want 5s", cfg.QueuePoll)
	}
	if cfg.FilesIdlePoll != time.Minute {
		t.Fatalf("FilesIdlePoll = %v, want 1m", cfg.FilesIdlePoll)
	}
	if cfg.FilesActivePoll != defaultFilesActivePoll {
		t.Fatalf("FilesActivePoll = %v, want default %v", cfg.FilesActivePoll, defaultFilesActivePoll)
	}
	if cfg.ExportStagger != 50*time.Millisecond {
		t.Fatalf("ExportStagger = %v, want 50ms", cfg.ExportStagger)
	}
	if want := []string{"mpv", "--no-video"}; !reflect.DeepEqual(cfg.PlayerCommand, want) {
		t.Fatalf("PlayerCommand = %v, want %v", cfg.PlayerCommand, want)
	}
}

func TestLoad_NonPositiveIntervalsUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "   "
queue_poll_seconds = -1
reload_settle_ms = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.QueuePoll != defaultQueuePoll {
		t.Fatalf("QueuePoll = %v, want %v", cfg.QueuePoll, defaultQueuePoll)
	}
	if cfg.ReloadSettle != defaultReloadSettle {
		t.Fatalf("ReloadSettle = %v, want %v", cfg.ReloadSettle, defaultReloadSettle)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/auqa.log")) {
		t.Fatalf("LogPath = %q, want it to end with /auqa.log", got)
	}
}
