package main

import (
	"fmt"

	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var flagLogLevel string

// cfg and logger are set by loadConfig before any subcommand runs
var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "tubegram",
	Short:         "Telegram bot that replies to YouTube links with audio or video",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration and sets up the logger
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger = utils.NewLogger(cfg.LogLevel)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tubegram %s\n", Version)
	},
}
