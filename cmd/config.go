package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"disk-sweep/infrastructure/config"
	"disk-sweep/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage custom and disabled targets",
	Long: `Manage the configuration file: create it, add or remove custom targets,
and enable or disable catalog targets.

Examples:
  disk-sweep config init
  disk-sweep config add --name "Gradle Cache" --path ~/.gradle/caches
  disk-sweep config disable Docker
  disk-sweep config list`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configDisableCmd)
	configCmd.AddCommand(configEnableCmd)
}

// --- INIT command ---

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigInitWithPrompter(DefaultPrompter, cfgFile, DefaultOutput)
	},
}

// RunConfigInitWithPrompter writes the default config, asking before overwriting (for testing)
func RunConfigInitWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", configPath), false)
		if err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Init cancelled.")
			return nil
		}
	}

	if err := config.Save(config.Default(), configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

// --- ADD command ---

var (
	addName        string
	addDescription string
	addMode        string
	addPaths       []string
)

var configAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom path-based target",
	Long: `Add a custom target that cleans one or more paths.

Modes:
  remove    delete each path entirely (default)
  contents  empty each directory but keep it
  reset     delete and recreate each directory

Examples:
  disk-sweep config add --name "Gradle Cache" --path ~/.gradle/caches
  disk-sweep config add --name "Go Build Cache" --path ~/Library/Caches/go-build --mode contents`,
	Args: cobra.NoArgs,
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addName, "name", "", "Target name (required)")
	configAddCmd.Flags().StringVar(&addDescription, "description", "", "Description shown before confirming")
	configAddCmd.Flags().StringVar(&addMode, "mode", config.ModeRemove, "Cleanup mode: remove, contents, or reset")
	configAddCmd.Flags().StringArrayVar(&addPaths, "path", nil, "Path to clean, ~ allowed (repeatable, required)")
	configAddCmd.MarkFlagRequired("name")
	configAddCmd.MarkFlagRequired("path")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	if err := RunConfigAddWithDependencies(cfg, cfgFile, addName, addDescription, addMode, addPaths, DefaultOutput); err != nil {
		return err
	}
	warnMissingPaths(filesystem.NewChecker(), homeDir, addPaths, DefaultOutput)
	return nil
}

// PathChecker reports configured paths that are not on disk
type PathChecker interface {
	Missing(paths ...string) []string
}

var _ PathChecker = (*filesystem.Checker)(nil)

// warnMissingPaths notes configured paths that do not exist yet. They are
// measured as empty until something creates them.
func warnMissingPaths(checker PathChecker, home string, paths []string, out OutputWriter) {
	byAbs := make(map[string]string, len(paths))
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a := config.ExpandHome(p, home)
		byAbs[a] = p
		abs = append(abs, a)
	}
	for _, a := range checker.Missing(abs...) {
		fmt.Fprintf(out, "Note: %s does not exist yet\n", byAbs[a])
	}
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, name, description, mode string, paths []string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.AddCustomTarget(name, description, mode, paths); err != nil {
		return err
	}

	fmt.Fprintf(out, "Added target %q: %s\n", name, strings.Join(paths, ", "))
	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom and disabled targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigListWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	custom := mgr.ListCustomTargets()
	if len(custom) == 0 {
		fmt.Fprintln(out, "No custom targets configured.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMODE\tPATHS")
		for _, ct := range custom {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ct.Name, ct.Mode, strings.Join(ct.Paths, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(cfg.Targets.Disabled) > 0 {
		fmt.Fprintf(out, "\nDisabled: %s\n", strings.Join(cfg.Targets.Disabled, ", "))
	}
	return nil
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a custom target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, name string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.RemoveCustomTarget(name); err != nil {
		if errors.Is(err, config.ErrTargetNotFound) {
			return fmt.Errorf("%w (built-in targets can only be disabled)", err)
		}
		return err
	}

	fmt.Fprintf(out, "Removed target %q\n", name)
	return nil
}

// --- DISABLE / ENABLE commands ---

var configDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Exclude a target from future runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigToggleWithDependencies(cfg, cfgFile, args[0], false, DefaultOutput)
	},
}

var configEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Include a previously disabled target again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunConfigToggleWithDependencies(cfg, cfgFile, args[0], true, DefaultOutput)
	},
}

// RunConfigToggleWithDependencies enables or disables a target with injected dependencies
func RunConfigToggleWithDependencies(cfg *config.Config, configPath, name string, enable bool, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	if enable {
		if err := mgr.EnableTarget(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Enabled target %q\n", name)
		return nil
	}

	if err := mgr.DisableTarget(name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Disabled target %q\n", name)
	return nil
}
