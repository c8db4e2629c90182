package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/config"

	"github.com/spf13/cobra"
)

// exitInterrupted is the conventional status for a run stopped by Ctrl-C
const exitInterrupted = 130

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
	cfgErr  error
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "disk-sweep",
	Short: "Reclaim disk space from caches, logs, and build artifacts",
	Long: `disk-sweep measures well-known cache, log, and build-artifact locations on a
developer workstation, shows how much space each would free, and cleans each
one only after you confirm it.

  - Homebrew, npm, pip, Yarn, RubyGems, and CocoaPods caches
  - User caches, logs, and the Trash
  - Xcode derived data, archives, and iOS device support files
  - Docker images and build cache

Example:
  disk-sweep scan
  disk-sweep clean --only "npm,trash"`,
	SilenceUsage: true,
}

// Execute runs the root command. An interrupted run exits with status 130.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cleanup.ErrInterrupted) {
			os.Exit(exitInterrupted)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/disk-sweep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level and mirror the log to stderr")
}

func initConfig() {
	homeDir, _ = os.UserHomeDir()
	if cfgFile == "" {
		cfgFile = config.DefaultPath(homeDir)
	}

	// A missing file yields defaults; a broken one is reported by the
	// commands that need it.
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("failed to load %s: %w", cfgFile, cfgErr)
	}
	return cfg, nil
}
