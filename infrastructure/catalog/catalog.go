package catalog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/command"
	"disk-sweep/infrastructure/config"

	"github.com/sirupsen/logrus"
)

// Sizer measures filesystem subtrees.
// Implemented by filesystem.Probe
type Sizer interface {
	Measure(ctx context.Context, path string) cleanup.SizeResult
	MeasureAll(ctx context.Context, paths ...string) cleanup.SizeResult
}

// Deleter removes filesystem data.
// Implemented by filesystem.Remover
type Deleter interface {
	RemoveAll(path string) error
	Reset(path string) error
	RemoveContents(dir string, skipPrefixes ...string) error
	RemoveSubdirs(dir string) error
}

// Env holds the adapters targets are built from
type Env struct {
	Home    string
	Runner  command.Runner
	Probe   Sizer
	Remover Deleter
	Log     logrus.FieldLogger
}

// builder binds the adapters and timeouts shared by every target
type builder struct {
	env            Env
	commandTimeout time.Duration
	lookupTimeout  time.Duration
	protected      []string
}

// Build returns the ordered list of enabled targets: the built-in catalog
// followed by custom targets from cfg. Target names must be unique
// (case-insensitive).
func Build(cfg *config.Config, env Env) ([]cleanup.Target, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if env.Log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		env.Log = log
	}

	b := &builder{
		env:            env,
		commandTimeout: cfg.Run.CommandTimeout,
		lookupTimeout:  cfg.Run.LookupTimeout,
		protected:      cfg.Targets.ProtectedCachePrefixes,
	}

	all := b.builtin()
	for _, ct := range cfg.Targets.Custom {
		all = append(all, b.custom(ct))
	}

	seen := make(map[string]bool, len(all))
	targets := make([]cleanup.Target, 0, len(all))
	for _, t := range all {
		key := strings.ToLower(t.Name())
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", cleanup.ErrDuplicateTarget, t.Name())
		}
		seen[key] = true

		if cfg.IsDisabled(t.Name()) {
			env.Log.WithField("target", t.Name()).Debug("Target disabled by config")
			continue
		}
		targets = append(targets, t)
	}

	return targets, nil
}

// path joins elements onto the home directory
func (b *builder) path(elem ...string) string {
	return filepath.Join(append([]string{b.env.Home}, elem...)...)
}

func (b *builder) log(target string) logrus.FieldLogger {
	return b.env.Log.WithField("target", target)
}

// measurePath returns a SizeFunc for a single directory
func (b *builder) measurePath(path string) cleanup.SizeFunc {
	return func(ctx context.Context) (cleanup.SizeResult, error) {
		return b.env.Probe.Measure(ctx, path), nil
	}
}

// measurePaths returns a SizeFunc that combines several directories
func (b *builder) measurePaths(paths ...string) cleanup.SizeFunc {
	return func(ctx context.Context) (cleanup.SizeResult, error) {
		return b.env.Probe.MeasureAll(ctx, paths...), nil
	}
}

// measureEntries sizes the direct children of dir accepted by include, so
// that the measured size matches what a selective clean deletes.
func (b *builder) measureEntries(ctx context.Context, dir string, include func(fs.DirEntry) bool) (cleanup.SizeResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanup.Bytes(0), nil
		}
		if os.IsPermission(err) {
			return cleanup.AccessDenied(), nil
		}
		return cleanup.SizeResult{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if include(e) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return b.env.Probe.MeasureAll(ctx, paths...), nil
}

const (
	dockerInfoTimeout = 5 * time.Second
	dockerDfTimeout   = 30 * time.Second
)
