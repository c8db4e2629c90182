package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/command"

	"github.com/sirupsen/logrus"
)

// DefaultProbeTimeout bounds the du invocation; the fallback walk is unbounded
const DefaultProbeTimeout = 30 * time.Second

// permissionMarkers are the du diagnostics that indicate unreadable entries
var permissionMarkers = []string{"Permission denied", "Operation not permitted"}

// Probe measures the byte size of a filesystem subtree, tolerating partial
// failure. It asks du first and walks the tree itself when du cannot give
// a usable total.
type Probe struct {
	runner  command.Runner
	duPath  string
	timeout time.Duration
	log     logrus.FieldLogger
	openFS  func(root string) fs.FS
	stat    func(path string) (fs.FileInfo, error)
}

// ProbeOption is a functional option for configuring Probe
type ProbeOption func(*Probe)

// WithDuPath sets a custom du executable path
func WithDuPath(path string) ProbeOption {
	return func(p *Probe) {
		p.duPath = path
	}
}

// WithProbeTimeout sets the du timeout
func WithProbeTimeout(timeout time.Duration) ProbeOption {
	return func(p *Probe) {
		p.timeout = timeout
	}
}

// WithProbeLogger sets the logger used for fallback diagnostics
func WithProbeLogger(log logrus.FieldLogger) ProbeOption {
	return func(p *Probe) {
		p.log = log
	}
}

// WithFS replaces how the walk opens a subtree (for testing)
func WithFS(open func(root string) fs.FS) ProbeOption {
	return func(p *Probe) {
		p.openFS = open
	}
}

// NewProbe creates a new size probe
func NewProbe(runner command.Runner, opts ...ProbeOption) *Probe {
	p := &Probe{
		runner:  runner,
		duPath:  "du",
		timeout: DefaultProbeTimeout,
		log:     discardLogger(),
		openFS:  os.DirFS,
		stat:    os.Stat,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Measure returns the size of the subtree at path. It never fails: a missing
// path is Bytes(0), an unreadable one is AccessDenied.
func (p *Probe) Measure(ctx context.Context, path string) cleanup.SizeResult {
	if path == "" {
		return cleanup.Bytes(0)
	}

	info, err := p.stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cleanup.Bytes(0)
	}

	// du charges a directory for its own blocks, so an empty directory
	// would never come back as zero.
	if err == nil && info.IsDir() {
		if entries, rerr := os.ReadDir(path); rerr == nil && len(entries) == 0 {
			return cleanup.Bytes(0)
		}
	}

	if size, ok := p.measureWithDu(ctx, path); ok {
		// du charges every directory for its own blocks, so a tree of empty
		// or unreadable directories still reports a total. Only trust it
		// once a readable byte is known to exist.
		if found := p.scan(ctx, path, true); found.total == 0 && found.err == nil {
			return found.verdict()
		}
		return cleanup.Bytes(size)
	}

	return p.walk(ctx, path)
}

// MeasureAll measures several paths and combines them into one result
func (p *Probe) MeasureAll(ctx context.Context, paths ...string) cleanup.SizeResult {
	results := make([]cleanup.SizeResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, p.Measure(ctx, path))
	}
	return cleanup.Combine(results...)
}

func (p *Probe) measureWithDu(ctx context.Context, path string) (int64, bool) {
	log := p.log.WithField("path", path)

	res := p.runner.Run(ctx, p.timeout, p.duPath, "-sk", path)
	switch {
	case res.NotFound:
		log.Debug("du not available, walking tree")
		return 0, false
	case res.TimedOut:
		log.Warnf("du timed out after %s, walking tree", p.timeout)
		return 0, false
	}

	// du still prints the total of what it could read when some entries
	// are inaccessible, so a non-zero exit is not disqualifying.
	if kib, ok := parseDuTotal(res.Stdout); ok {
		if res.ExitCode != 0 {
			log.WithField("exit_code", res.ExitCode).Debug("du reported errors but produced a total")
		}
		return kib * 1024, true
	}

	if hasPermissionDiagnostic(res.Stderr) {
		log.Warn("du access denied, walking tree for a partial size")
	} else {
		log.WithField("stderr", command.FirstLine(res.Stderr)).Warn("du produced no usable total, walking tree")
	}
	return 0, false
}

// walkResult is what a walk over a subtree observed
type walkResult struct {
	total  int64
	denied int
	err    error
}

func (w walkResult) verdict() cleanup.SizeResult {
	switch {
	case w.err != nil:
		return cleanup.Unmeasured("measurement interrupted")
	case w.total > 0:
		return cleanup.Bytes(w.total)
	case w.denied > 0:
		return cleanup.AccessDenied()
	default:
		return cleanup.Bytes(0)
	}
}

// walk sums the sizes of every readable entry below path
func (p *Probe) walk(ctx context.Context, path string) cleanup.SizeResult {
	w := p.scan(ctx, path, false)
	if w.err != nil {
		p.log.WithField("path", path).WithError(w.err).Warn("size walk interrupted")
	}
	if w.denied > 0 {
		p.log.WithFields(logrus.Fields{"path": path, "denied": w.denied}).Info("walk skipped unreadable entries")
	}
	return w.verdict()
}

// scan walks the subtree at path counting readable file bytes and
// unreadable entries. With firstByte set it stops at the first non-empty
// readable file.
func (p *Probe) scan(ctx context.Context, path string, firstByte bool) walkResult {
	var w walkResult

	err := fs.WalkDir(p.openFS(path), ".", func(name string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.denied++
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.denied++
			}
			return nil
		}
		w.total += info.Size()
		if firstByte && w.total > 0 {
			return fs.SkipAll
		}
		return nil
	})
	w.err = err
	return w
}

// parseDuTotal reads the leading block count of du -sk output
func parseDuTotal(stdout string) (int64, bool) {
	fields := strings.Fields(command.FirstLine(stdout))
	if len(fields) == 0 {
		return 0, false
	}
	kib, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || kib < 0 {
		return 0, false
	}
	return kib, true
}

func hasPermissionDiagnostic(stderr string) bool {
	for _, marker := range permissionMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
