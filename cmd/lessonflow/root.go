package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/lessonflow/internal/config"
	"github.com/aretw0/lessonflow/internal/logging"
	"github.com/spf13/cobra"
)

var (
	appConfig = config.Default()
	logger    = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lessonflow",
	Short: "Lessonflow is an editor core for branching lesson flows",
	Long: `Lessonflow manages lesson flow documents: typed nodes, ordered blocks,
an undo/redo timeline and the asset constraints that tie blocks to the Setup node.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = slog.LevelDebug
		}
		logger = logging.NewWithWriter(os.Stderr, level, cfg.Log.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
