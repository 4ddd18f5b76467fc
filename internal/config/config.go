package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the AuQA client reads from config.toml.
type Config struct {
	APIURL    string
	StatePath string
	ExportDir string
	LogDir    string
	LogLevel  string
	LogFormat string

	QueuePoll       time.Duration
	FilesActivePoll time.Duration
	FilesIdlePoll   time.Duration
	ReloadSettle    time.Duration
	ExportStagger   time.Duration

	PlayerCommand []string
}

const (
	defaultConfigPath = "~/.config/auqa/config.toml"
	defaultAPIURL     = "http://127.0.0.1:5001"
	defaultStatePath  = "~/.local/state/auqa/state.toml"
	defaultExportDir  = "~/Downloads/auqa"
	defaultLogDir     = "~/.local/share/auqa/logs"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"

	defaultQueuePoll       = 2 * time.Second
	defaultFilesActivePoll = 3 * time.Second
	defaultFilesIdlePoll   = 15 * time.Second
	defaultReloadSettle    = 500 * time.Millisecond
	defaultExportStagger   = 200 * time.Millisecond
)

var defaultPlayerCommand = []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}

type rawConfig struct {
	APIURL    string `toml:"api_url"`
	StatePath string `toml:"state_path"`
	ExportDir string `toml:"export_dir"`
	LogDir    string `toml:"log_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	QueuePollSeconds       int `toml:"queue_poll_seconds"`
	FilesActivePollSeconds int `toml:"files_active_poll_seconds"`
	FilesIdlePollSeconds   int `toml:"files_idle_poll_seconds"`
	ReloadSettleMS         int `toml:"reload_settle_ms"`
	ExportStaggerMS        int `toml:"export_stagger_ms"`

	PlayerCommand []string `toml:"player_command"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		StatePath:       mustExpand(defaultStatePath),
		ExportDir:       mustExpand(defaultExportDir),
		LogDir:          mustExpand(defaultLogDir),
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		QueuePoll:       defaultQueuePoll,
		FilesActivePoll: defaultFilesActivePoll,
		FilesIdlePoll:   defaultFilesIdlePoll,
		ReloadSettle:    defaultReloadSettle,
		ExportStagger:   defaultExportStagger,
		PlayerCommand:   append([]string(nil), defaultPlayerCommand...),
	}
}

// Load locates and parses config.toml, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return raw.resolve(), nil
}

func (raw rawConfig) resolve() Config {
	cfg := Default()

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.StatePath); v != "" {
		cfg.StatePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.ExportDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogFormat)); v != "" {
		cfg.LogFormat = v
	}

	cfg.QueuePoll = positiveDuration(raw.QueuePollSeconds, time.Second, defaultQueuePoll)
	cfg.FilesActivePoll = positiveDuration(raw.FilesActivePollSeconds, time.Second, defaultFilesActivePoll)
	cfg.FilesIdlePoll = positiveDuration(raw.FilesIdlePollSeconds, time.Second, defaultFilesIdlePoll)
	cfg.ReloadSettle = positiveDuration(raw.ReloadSettleMS, time.Millisecond, defaultReloadSettle)
	cfg.ExportStagger = positiveDuration(raw.ExportStaggerMS, time.Millisecond, defaultExportStagger)

	var command []string
	for _, part := range raw.PlayerCommand {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			command = append(command, trimmed)
		}
	}
	if len(command) > 0 {
		cfg.PlayerCommand = command
	}
	return cfg
}

// LogPath returns the path to the client log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/auqa.log")
	}
	return filepath.Join(c.LogDir, "auqa.log")
}

func positiveDuration(value int, unit, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * unit
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
