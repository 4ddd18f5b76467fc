package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/auqa/internal/auqa"
	"github.com/five82/auqa/internal/config"
	"github.com/five82/auqa/internal/export"
	"github.com/five82/auqa/internal/logging"
	"github.com/five82/auqa/internal/playback"
	"github.com/five82/auqa/internal/prefs"
	"github.com/five82/auqa/internal/session"
	"github.com/five82/auqa/internal/ui"
)

const healthTimeout = 3 * time.Second

// Options configure the TUI.
type Options struct {
	ConfigPath string
	APIURL     string // overrides api_url when set
	PollEvery  time.Duration
}

// Runtime is the wired client shared by the TUI and the one-shot commands.
type Runtime struct {
	Config config.Config
	Client *auqa.Client
	Prefs  *prefs.Store
	Clock  *session.Clock
	Engine *Engine
	Logger *slog.Logger
}

// NewRuntime wires every collaborator for cfg. Player problems are logged,
// not fatal; playback then reports an error when used.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	logger = logging.OrNop(logger)

	client, err := auqa.NewClient(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("init auqa client: %w", err)
	}

	store := prefs.NewStore(cfg.StatePath)
	clock := session.NewClock(store, session.WithLogger(logger))

	var player playback.Player
	if ep, err := playback.NewExecPlayer(cfg.PlayerCommand); err != nil {
		logger.Warn("clip playback disabled", logging.Error(err))
	} else {
		player = ep
	}

	engine := NewEngine(Deps{
		API:        client,
		Clock:      clock,
		Player:     player,
		Writer:     export.NewWriter(cfg.ExportDir, cfg.ExportStagger, export.WithLogger(logger)),
		Logger:     logger,
		Cadence:    Cadence{Active: cfg.FilesActivePoll, Idle: cfg.FilesIdlePoll},
		QueueEvery: cfg.QueuePoll,
		Settle:     cfg.ReloadSettle,
	})

	return &Runtime{
		Config: cfg,
		Client: client,
		Prefs:  store,
		Clock:  clock,
		Engine: engine,
		Logger: logger,
	}, nil
}

// Run boots the AuQA TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.PollEvery > 0 {
		cfg.QueuePoll = opts.PollEvery
	}

	// The terminal belongs to Bubble Tea, so logs only go to the file.
	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: []string{cfg.LogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	rt, err := NewRuntime(cfg, logger)
	if err != nil {
		return err
	}

	warning := ""
	if err := checkHealth(ctx, rt.Client); err != nil {
		warning = fmt.Sprintf("AuQA server at %s is not responding; retrying in the background", rt.Client.BaseURL())
		logger.Warn("health check failed", logging.Error(err))
	}

	rt.Engine.Start(ctx)
	defer rt.Engine.Stop()

	return ui.Run(ui.Options{
		Context:   ctx,
		Engine:    rt.Engine,
		Prefs:     rt.Prefs,
		APIURL:    rt.Client.BaseURL(),
		ExportDir: cfg.ExportDir,
		LogPath:   cfg.LogPath(),
		Warning:   warning,
		Logger:    logger,
	})
}

func checkHealth(ctx context.Context, client *auqa.Client) error {
	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return client.Health(hctx)
}
