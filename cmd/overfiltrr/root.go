package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/overfiltrr/overfiltrr/internal/config"
)

type commandContext struct {
	configFlag   string
	logLevelFlag string
	logFileFlag  string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// loadConfig reads the config once and applies the command line overrides.
func (c *commandContext) loadConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if lvl := strings.TrimSpace(c.logLevelFlag); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if path := strings.TrimSpace(c.logFileFlag); path != "" {
			cfg.Logging.Path = path
			cfg.Logging.FileEnabled = true
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "overfiltrr",
		Short: "Categorize and approve Overseerr requests",
		Long: "overfiltrr receives Overseerr MEDIA_PENDING webhooks, picks a category and quality\n" +
			"profile for the request from its metadata and updates and approves it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Override logging.level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&ctx.logFileFlag, "log-file", "", "Write logs to this file, overriding logging.path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newTokenCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
