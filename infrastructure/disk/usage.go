package disk

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// Usage is a point-in-time view of one filesystem's capacity
type Usage struct {
	Path        string
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// UsageFunc reads filesystem usage for a path
type UsageFunc func(ctx context.Context, path string) (*disk.UsageStat, error)

// Reporter reads disk usage before and after a run
type Reporter struct {
	usage UsageFunc
}

// NewReporter creates a reporter backed by gopsutil
func NewReporter() *Reporter {
	return &Reporter{usage: disk.UsageWithContext}
}

// NewReporterWithFunc creates a reporter with a custom usage source (for testing)
func NewReporterWithFunc(fn UsageFunc) *Reporter {
	return &Reporter{usage: fn}
}

// Snapshot returns the usage of the filesystem holding path
func (r *Reporter) Snapshot(ctx context.Context, path string) (Usage, error) {
	stat, err := r.usage(ctx, path)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return Usage{
		Path:        path,
		Total:       stat.Total,
		Used:        stat.Used,
		Free:        stat.Free,
		UsedPercent: stat.UsedPercent,
	}, nil
}

// Gained returns how many bytes became free between before and after.
// Negative when something else filled the disk meanwhile.
func Gained(before, after Usage) int64 {
	return int64(after.Free) - int64(before.Free)
}
