// Package cli implements the devicectl command tree.
package cli

import (
	"io"
	"time"

	"codeberg.org/mutker/devicectl/internal/config"
	"codeberg.org/mutker/devicectl/internal/logger"
	"codeberg.org/mutker/devicectl/internal/sensor"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

func Execute() error {
	return newRootCmd(newApp()).Execute()
}

type adapterFactory func(a *app) (sensor.Adapter, func(), error)

type app struct {
	cfg        *config.Config
	log        logger.Logger
	now        func() time.Time
	newAdapter adapterFactory
	// logOutput overrides stderr as the log destination.
	logOutput io.Writer
}

func newApp() *app {
	return &app{
		log:        logger.Default(),
		now:        time.Now,
		newAdapter: platformAdapter,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devicectl",
		Short:         "Observe battery, display and thermal state of this device",
		Long:          "devicectl reads device state from the platform, keeps it current with change notifications and exports it to the terminal, SQLite, MQTT and Prometheus.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a TOML config file")
	flags.String("log-level", string(config.DefaultLogLevel), "Log level: debug, info, warning, error")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("verbose", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSnapshotCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
	)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.WithFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	a.cfg = cfg

	out := a.logOutput
	if out == nil {
		out = cmd.ErrOrStderr()
	}
	logger.InitWithWriter(out, logger.ParseLevel(cfg.LogLevel), logger.IsService())

	a.log.Debug().
		Str("config_file", cfg.File).
		Str("log_level", cfg.LogLevel).
		Msg("Config loaded")

	return nil
}
