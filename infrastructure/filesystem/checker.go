package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
)

// Checker answers existence questions about cleanup paths
type Checker struct {
	stat func(string) (os.FileInfo, error)
}

// NewChecker creates a checker backed by os.Lstat, so a dangling symlink
// still counts as present.
func NewChecker() *Checker {
	return &Checker{stat: os.Lstat}
}

// Missing returns the paths that definitely do not exist, in input order.
// A path that cannot be inspected (permission denied) is not reported.
func (c *Checker) Missing(paths ...string) []string {
	var missing []string
	for _, p := range paths {
		if _, err := c.stat(p); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, p)
		}
	}
	return missing
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
