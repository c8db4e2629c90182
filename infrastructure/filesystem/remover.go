package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// RemovalError reports entries that could not be deleted while clearing a
// directory. Entries that were removed stay removed.
type RemovalError struct {
	Path   string
	Failed int
	Total  int
	First  error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("%d of %d entries in %s could not be removed: %v", e.Failed, e.Total, e.Path, e.First)
}

func (e *RemovalError) Unwrap() error {
	return e.First
}

// Remover deletes cache contents on behalf of cleanup targets
type Remover struct {
	log logrus.FieldLogger
}

// NewRemover creates a remover that logs per-entry failures at debug level
func NewRemover(log logrus.FieldLogger) *Remover {
	if log == nil {
		log = discardLogger()
	}
	return &Remover{log: log}
}

// RemoveAll deletes path and everything below it. A missing path is not an error.
func (r *Remover) RemoveAll(path string) error {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Reset deletes path and recreates it as an empty directory
func (r *Remover) Reset(path string) error {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to recreate %s: %w", path, err)
	}
	return nil
}

// RemoveContents deletes every entry directly inside dir, keeping dir itself.
// Entries whose names start with one of skipPrefixes are left alone.
func (r *Remover) RemoveContents(dir string, skipPrefixes ...string) error {
	return r.removeEntries(dir, func(e fs.DirEntry) bool {
		return !HasAnyPrefix(e.Name(), skipPrefixes)
	})
}

// RemoveSubdirs deletes the directories directly inside dir, keeping files
func (r *Remover) RemoveSubdirs(dir string) error {
	return r.removeEntries(dir, func(e fs.DirEntry) bool {
		return e.IsDir()
	})
}

func (r *Remover) removeEntries(dir string, include func(fs.DirEntry) bool) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	rerr := &RemovalError{Path: dir}
	for _, e := range entries {
		if !include(e) {
			continue
		}
		rerr.Total++

		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			r.log.WithField("path", path).WithError(err).Debug("could not remove entry")
			rerr.Failed++
			if rerr.First == nil {
				rerr.First = err
			}
		}
	}

	if rerr.Failed > 0 {
		return rerr
	}
	return nil
}

// HasAnyPrefix reports whether name starts with one of prefixes. Blank
// prefixes never match.
func HasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
