package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"disk-sweep/domain/cleanup"

	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the cleanup targets in execution order",
	Long: `List every enabled cleanup target in the order a run visits them.
Targets disabled in the config file are listed separately.

Example:
  disk-sweep targets`,
	RunE: runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	deps, err := newRuntimeDeps(cfg, homeDir)
	if err != nil {
		return err
	}
	defer deps.closer.Close()

	return RunTargetsWithDependencies(deps.targets, cfg.Targets.Disabled, DefaultOutput)
}

// RunTargetsWithDependencies prints the catalog (for testing)
func RunTargetsWithDependencies(targets []cleanup.Target, disabled []string, out OutputWriter) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tDESCRIPTION")
	for i, t := range targets {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, t.Name(), t.Description())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(disabled) > 0 {
		fmt.Fprintf(out, "\nDisabled: %s\n", strings.Join(disabled, ", "))
	}
	return nil
}
