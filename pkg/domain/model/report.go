package model

// EntryResult is the outcome of extracting a single entry
type EntryResult struct {
	Entry FileEntry
	Path  string // final output path, empty for dry runs and skipped entries
	Err   error  // nil on success
}

// OK reports whether the entry was extracted (or validated, in a dry run)
func (r EntryResult) OK() bool {
	return r.Err == nil
}

// ExtractionReport holds per-entry outcomes in entry-table order
type ExtractionReport struct {
	Results []EntryResult
}

// Succeeded counts entries that extracted cleanly
func (r *ExtractionReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed counts entries that ended with an error
func (r *ExtractionReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}
