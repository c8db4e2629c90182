package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	appcleanup "disk-sweep/application/cleanup"
	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/catalog"
	"disk-sweep/infrastructure/disk"
	"disk-sweep/infrastructure/terminal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// usagePath is the filesystem whose capacity is shown around a run
const usagePath = "/"

var (
	cleanDryRun bool
	cleanYes    bool
	cleanOnly   []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Measure every target and clean the ones you confirm",
	Long: `Measure every cleanup target, show an overview of the space each would
free, then ask before cleaning each non-empty target in turn.

Only an explicit "y" or "yes" cleans a target. Anything else, including an
empty answer, skips it. Ctrl-C stops the run and still prints the summary.

Examples:
  disk-sweep clean
  disk-sweep clean --dry-run
  disk-sweep clean --only "npm,pip" --yes`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Measure and report without deleting anything")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Clean every non-empty target without asking")
	cleanCmd.Flags().StringSliceVar(&cleanOnly, "only", nil, "Restrict the run to these targets (name or any word of it)")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	deps, err := newRuntimeDeps(cfg, homeDir)
	if err != nil {
		return err
	}
	defer deps.closer.Close()

	_, err = RunCleanWithDependencies(
		cmd.Context(),
		CleanOptions{
			DryRun:             cleanDryRun,
			AssumeYes:          cleanYes,
			Only:               cleanOnly,
			MeasureConcurrency: cfg.Run.MeasureConcurrency,
			LogFile:            deps.logFile,
		},
		deps.targets,
		DefaultConfirmer(os.Stdin, DefaultOutput),
		terminal.NewPresenter(DefaultOutput),
		disk.NewReporter(),
		deps.log,
	)
	return err
}

// CleanOptions carries the clean command flags
type CleanOptions struct {
	DryRun             bool
	AssumeYes          bool
	Only               []string
	MeasureConcurrency int
	LogFile            string
	RunID              string
}

// RunCleanWithDependencies runs a full cleanup with injected dependencies (for testing)
func RunCleanWithDependencies(
	ctx context.Context,
	opts CleanOptions,
	targets []cleanup.Target,
	confirmer cleanup.Confirmer,
	console Console,
	usage UsageSource,
	log logrus.FieldLogger,
) (*cleanup.RunSummary, error) {
	if len(opts.Only) > 0 {
		selected, err := catalog.Select(targets, opts.Only)
		if err != nil {
			return nil, err
		}
		targets = selected
	}

	svc := appcleanup.NewService(confirmer, console,
		appcleanup.WithDryRun(opts.DryRun),
		appcleanup.WithAssumeYes(opts.AssumeYes),
		appcleanup.WithMeasureConcurrency(opts.MeasureConcurrency),
		appcleanup.WithRunID(opts.RunID),
		appcleanup.WithLogger(log),
	)
	log = log.WithField("run_id", svc.RunID())

	console.Banner("Disk Sweep", time.Now(), opts.LogFile)
	if opts.DryRun {
		console.Info("Dry run: nothing will be deleted")
	}
	before, beforeErr := showUsage(ctx, console, usage, log, "Current Disk Usage")

	summary, runErr := svc.Run(ctx, targets)
	if errors.Is(runErr, cleanup.ErrInterrupted) {
		console.Warning("Cleanup interrupted by user")
	}

	// Cancellation must not hide the final figures.
	after, afterErr := showUsage(context.WithoutCancel(ctx), console, usage, log, "Final Disk Usage")
	if beforeErr == nil && afterErr == nil {
		log.WithField("gained", disk.Gained(before, after)).Info("Disk free space change")
	}

	console.Info("Completed at: " + time.Now().Format("2006-01-02 15:04:05"))
	return summary, runErr
}

func showUsage(ctx context.Context, console Console, usage UsageSource, log logrus.FieldLogger, title string) (disk.Usage, error) {
	u, err := usage.Snapshot(ctx, usagePath)
	if err != nil {
		log.WithError(err).Warn("Disk usage unavailable")
		return disk.Usage{}, err
	}
	console.ShowDiskUsage(title, u)
	return u, nil
}
