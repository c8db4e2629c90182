package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/catalog"
	"disk-sweep/infrastructure/command"
	"disk-sweep/infrastructure/config"
	"disk-sweep/infrastructure/disk"
	"disk-sweep/infrastructure/filesystem"
	"disk-sweep/infrastructure/logging"

	"github.com/sirupsen/logrus"
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is the default output writer for commands
var DefaultOutput OutputWriter = os.Stdout

// Console is the operator-facing output of a run
type Console interface {
	cleanup.Presenter
	Banner(title string, started time.Time, logFile string)
	ShowDiskUsage(title string, u disk.Usage)
	Info(text string)
	Warning(text string)
}

// UsageSource reads filesystem capacity
type UsageSource interface {
	Snapshot(ctx context.Context, path string) (disk.Usage, error)
}

// runtimeDeps holds the production adapters shared by commands
type runtimeDeps struct {
	log     *logrus.Logger
	closer  io.Closer
	logFile string
	targets []cleanup.Target
}

// newRuntimeDeps wires the logger, command runner, probe, remover, and catalog
func newRuntimeDeps(cfg *config.Config, home string) (*runtimeDeps, error) {
	logFile := config.ExpandHome(cfg.Log.File, home)
	log, closer, err := logging.New(logging.Options{
		File:   logFile,
		Level:  cfg.Log.Level,
		Debug:  debug,
		Mirror: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	runner := command.NewExecRunner()
	probe := filesystem.NewProbe(runner,
		filesystem.WithDuPath(cfg.Probe.DuPath),
		filesystem.WithProbeTimeout(cfg.Probe.Timeout),
		filesystem.WithProbeLogger(log),
	)

	targets, err := catalog.Build(cfg, catalog.Env{
		Home:    home,
		Runner:  runner,
		Probe:   probe,
		Remover: filesystem.NewRemover(log),
		Log:     log,
	})
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &runtimeDeps{log: log, closer: closer, logFile: logFile, targets: targets}, nil
}
