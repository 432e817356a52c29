// Package cli implements the command-line interface for mirrorpool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	relayer       driving.Relayer
	healthChecker driving.HealthChecker
	configStore   driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mirrorpool",
	Short: "Mirror source-store files into a public file host",
	Long: `mirrorpool relays files from an authenticated source store into a
public file host, streaming the download directly into the upload and
skipping files the destination already holds.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices wires the driving-port implementations into the commands.
func SetServices(r driving.Relayer, h driving.HealthChecker, cfg driven.ConfigStore) {
	relayer = r
	healthChecker = h
	configStore = cfg
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
