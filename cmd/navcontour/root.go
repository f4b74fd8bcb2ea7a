package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorustyt/navcontour/common/logger"
	"github.com/gorustyt/navcontour/config"
)

// app carries the state shared by every subcommand once the root has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	rootCmd := &cobra.Command{
		Use:   "navcontour",
		Short: "Extract region contours from a compact heightfield",
		Long: `navcontour traces the outline of every region of a region-labelled
compact heightfield and simplifies it into the contours the polygon
mesh builder consumes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			a.cfg = cfg
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "navcontour.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newBuildCmd(a), newConvertCmd(a), newInspectCmd(a))
	return rootCmd
}
