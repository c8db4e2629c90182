package cmd

import (
	"context"
	"errors"

	appcleanup "disk-sweep/application/cleanup"
	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/catalog"
	"disk-sweep/infrastructure/terminal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scanOnly []string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Measure every target and show the overview without cleaning",
	Long: `Measure every cleanup target and print the overview ranked by size.
Nothing is prompted for and nothing is deleted.

Example:
  disk-sweep scan
  disk-sweep scan --only xcode`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringSliceVar(&scanOnly, "only", nil, "Restrict the scan to these targets")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	deps, err := newRuntimeDeps(cfg, homeDir)
	if err != nil {
		return err
	}
	defer deps.closer.Close()

	_, err = RunScanWithDependencies(cmd.Context(), deps.targets, scanOnly, cfg.Run.MeasureConcurrency,
		terminal.NewPresenter(DefaultOutput), deps.log)
	return err
}

// RunScanWithDependencies measures and reports targets (for testing)
func RunScanWithDependencies(
	ctx context.Context,
	targets []cleanup.Target,
	only []string,
	concurrency int,
	presenter cleanup.Presenter,
	log logrus.FieldLogger,
) (cleanup.Report, error) {
	if len(only) > 0 {
		selected, err := catalog.Select(targets, only)
		if err != nil {
			return cleanup.Report{}, err
		}
		targets = selected
	}

	svc := appcleanup.NewService(nil, presenter,
		appcleanup.WithMeasureConcurrency(concurrency),
		appcleanup.WithLogger(log),
	)

	_, measureErr := svc.MeasureAll(ctx, targets)
	report, err := svc.Report(targets)
	if err != nil {
		return report, err
	}
	if errors.Is(measureErr, cleanup.ErrInterrupted) {
		return report, measureErr
	}
	return report, nil
}
