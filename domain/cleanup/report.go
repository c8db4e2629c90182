package cleanup

import "sort"

// ReportRow is one line of the pre-execution overview
type ReportRow struct {
	Name        string
	Description string
	Size        SizeResult
	// Rank orders rows with Bytes(n>0) by size, 1 being the largest.
	// Zero for every other row.
	Rank int
}

// Report is the overview shown before any cleaning happens
type Report struct {
	Rows []ReportRow
	// Total sums the countable sizes only
	Total int64
}

// NewReport builds a report from targets in catalog order using their last
// measured sizes.
func NewReport(targets []Target) Report {
	r := Report{Rows: make([]ReportRow, len(targets))}
	sizes := make([]SizeResult, len(targets))
	var ranked []int

	for i, t := range targets {
		size := t.LastSize()
		r.Rows[i] = ReportRow{
			Name:        t.Name(),
			Description: t.Description(),
			Size:        size,
		}
		sizes[i] = size
		if n, ok := size.Countable(); ok && n > 0 {
			ranked = append(ranked, i)
		}
	}
	r.Total = SumCountable(sizes...)

	sort.SliceStable(ranked, func(a, b int) bool {
		return r.Rows[ranked[a]].Size.Bytes > r.Rows[ranked[b]].Size.Bytes
	})
	for pos, i := range ranked {
		r.Rows[i].Rank = pos + 1
	}

	return r
}

// Largest returns the top-ranked row, if any target has a countable size
func (r Report) Largest() (ReportRow, bool) {
	for _, row := range r.Rows {
		if row.Rank == 1 {
			return row, true
		}
	}
	return ReportRow{}, false
}
