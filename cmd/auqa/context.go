package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/five82/auqa/internal/app"
	"github.com/five82/auqa/internal/config"
	"github.com/five82/auqa/internal/logging"
)

type commandContext struct {
	configFlag *string
	apiURLFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, apiURLFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiURLFlag: apiURLFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) apiURL() string {
	if c.apiURLFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.apiURLFlag)
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if url := c.apiURL(); url != "" {
			cfg.APIURL = url
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withRuntime wires a client runtime for one command. Logs go to the log
// file so stdout stays parseable. The engine is never started; commands
// drive it directly.
func (c *commandContext) withRuntime(cmd *cobra.Command, adjust func(*config.Config), fn func(*app.Runtime) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(&cfg)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: []string{cfg.LogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.Component("cli"), "command", cmd.Name())

	rt, err := app.NewRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Engine.Stop()
	return fn(rt)
}
