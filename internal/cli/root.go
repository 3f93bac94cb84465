package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"coloop/internal/logging"
	"coloop/internal/sched"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    sched.Config
	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the coloop CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "coloop",
		Short: "coloop runs a cooperative event loop on a virtual clock",
		Long:  "coloop runs demo scenarios on a single-threaded cooperative scheduler and prints the effects they emit.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// An explicit --config must exist and parse; the default file is optional.
			if cmd.Flags().Changed("config") {
				loaded, err := sched.LoadFile(flagConfig)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				cfg = sched.Load(flagConfig)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = flagLogFormat
			}
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "config.yml", "YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging (logs every loop event)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newListCmd(),
		newRunCmd(),
	)
	return root
}
