package cleanup

// SizeKind tags the variant held by a SizeResult
type SizeKind int

const (
	// SizeBytes is a confirmed byte count (possibly zero)
	SizeBytes SizeKind = iota
	// SizeAccessDenied means the path existed but no bytes could be attributed
	SizeAccessDenied
	// SizeUnmeasured means the size cannot be expressed as a byte count
	SizeUnmeasured
)

func (k SizeKind) String() string {
	switch k {
	case SizeBytes:
		return "bytes"
	case SizeAccessDenied:
		return "access-denied"
	case SizeUnmeasured:
		return "unmeasured"
	default:
		return "unknown"
	}
}

// SizeResult is the measured outcome for one subtree or target.
// Bytes is only meaningful when Kind is SizeBytes. Reason carries a short
// explanation for SizeUnmeasured results and is meant for logs.
type SizeResult struct {
	Kind   SizeKind
	Bytes  int64
	Reason string
}

// Bytes returns a confirmed size of n bytes. Negative values are clamped to zero.
func Bytes(n int64) SizeResult {
	if n < 0 {
		n = 0
	}
	return SizeResult{Kind: SizeBytes, Bytes: n}
}

// AccessDenied returns the result for a path whose contents could not be read
func AccessDenied() SizeResult {
	return SizeResult{Kind: SizeAccessDenied}
}

// Unmeasured returns the result for a size that cannot be given as a byte count
func Unmeasured(reason string) SizeResult {
	return SizeResult{Kind: SizeUnmeasured, Reason: reason}
}

// IsEmpty reports whether the result is a confirmed zero. AccessDenied and
// Unmeasured are never empty.
func (r SizeResult) IsEmpty() bool {
	return r.Kind == SizeBytes && r.Bytes == 0
}

// Countable returns the byte count and true when the result may contribute
// to aggregate totals.
func (r SizeResult) Countable() (int64, bool) {
	if r.Kind != SizeBytes {
		return 0, false
	}
	return r.Bytes, true
}

// Combine merges the measurements of several paths belonging to one target.
// Byte sizes are summed; when nothing was counted, a denial wins over an
// unmeasured part, and both win over a plain zero.
func Combine(results ...SizeResult) SizeResult {
	var total int64
	var denied, unmeasured bool
	var reason string

	for _, r := range results {
		switch r.Kind {
		case SizeBytes:
			total += r.Bytes
		case SizeAccessDenied:
			denied = true
		case SizeUnmeasured:
			if !unmeasured {
				reason = r.Reason
			}
			unmeasured = true
		}
	}

	switch {
	case total > 0:
		return Bytes(total)
	case denied:
		return AccessDenied()
	case unmeasured:
		return Unmeasured(reason)
	default:
		return Bytes(0)
	}
}

// SumCountable adds up every countable result
func SumCountable(results ...SizeResult) int64 {
	var total int64
	for _, r := range results {
		if n, ok := r.Countable(); ok {
			total += n
		}
	}
	return total
}
