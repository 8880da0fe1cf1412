package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"moods/internal/config"
)

// cli carries what the persistent pre-run resolved to every subcommand.
type cli struct {
	configPath string
	cfg        config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "moods",
		Short: "Mood journal service",
		Long: `moods keeps an ordered list of mood entries in a key-value store.
Run "moods serve" for the HTTP API, or use the other commands to edit the
journal directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file (default $MOODS_CONFIG)")

	root.AddCommand(
		newServeCmd(c),
		newAddCmd(c),
		newListCmd(c),
		newDeleteCmd(c),
		newAnalyticsCmd(c),
		newResetCmd(c),
		newHashPasswordCmd(),
	)
	return root
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
