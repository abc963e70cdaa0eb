package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/config"
	"github.com/okian/pacematch/pkg/logger"
)

type rootFlags struct {
	configFile string
	dataDir    string
	store      string
	output     string
	verbose    bool
}

type commandContext struct {
	flags  rootFlags
	config *config.Config
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// setup routes logs to stderr and resolves the configuration with flag
// overrides applied on top of defaults, file and environment.
func (c *commandContext) setup(cmd *cobra.Command) error {
	if err := logger.InitWithWriter(cmd.ErrOrStderr(), logger.FormatText); err != nil {
		return err
	}
	if c.flags.configFile != "" {
		if err := os.Setenv(config.EnvConfig, c.flags.configFile); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfig, err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	if c.flags.dataDir != "" {
		cfg.DataDir = c.flags.dataDir
	}
	if c.flags.store != "" {
		cfg.Store = strings.ToLower(c.flags.store)
	}
	if c.flags.output != "" {
		if cfg.Store == config.StoreSQLite {
			cfg.SQLitePath = c.flags.output
		} else {
			cfg.AccumulationPath = c.flags.output
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if format, err := logger.ParseFormat(cfg.LogFormat); err == nil && format != logger.FormatText {
		if err := logger.InitWithWriter(cmd.ErrOrStderr(), format); err != nil {
			return err
		}
	}

	// Row-level drop warnings only surface with --verbose.
	level := "error"
	if c.flags.verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	c.config = cfg
	return nil
}

// withService opens a Service over the configured store and closes it after fn.
func (c *commandContext) withService(cmd *cobra.Command, fn func(*app.Service) error, opts ...app.Option) (err error) {
	svc, err := app.NewFromConfig(cmd.Context(), c.config, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(svc)
}
