package cleanup

import (
	"github.com/docker/go-units"
)

// sizeUnits mirrors the labels users see from Finder and du -h
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count with two decimals in 1024-based units
func FormatBytes(n int64) string {
	return units.CustomSize("%.2f %s", float64(n), 1024.0, sizeUnits)
}

// FormatSize renders a SizeResult for display. A true zero, a denial and an
// unmeasured size all render differently.
func FormatSize(r SizeResult) string {
	switch r.Kind {
	case SizeAccessDenied:
		return "Access Denied"
	case SizeUnmeasured:
		return "Unknown"
	}
	if r.Bytes == 0 {
		return "Empty (0 B)"
	}
	return FormatBytes(r.Bytes)
}

