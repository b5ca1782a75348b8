package models

// Dataset is the unified, read-only collection of compensation records.
// It is never mutated after construction, so it can be shared across
// goroutines without locking. Rebuilding produces a new Dataset.
type Dataset struct {
	records []CompensationRecord
}

// Combine concatenates normalized record sequences in order.
// No deduplication or cross-source reconciliation is performed.
func Combine(parts ...[]CompensationRecord) *Dataset {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	records := make([]CompensationRecord, 0, n)
	for _, p := range parts {
		records = append(records, p...)
	}
	return &Dataset{records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns a copy of the record at position i.
func (d *Dataset) At(i int) CompensationRecord {
	return d.records[i]
}

// Each calls fn for every record in order until fn returns false.
func (d *Dataset) Each(fn func(CompensationRecord) bool) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// Records returns a copy of all records.
func (d *Dataset) Records() []CompensationRecord {
	out := make([]CompensationRecord, d.Len())
	if d != nil {
		copy(out, d.records)
	}
	return out
}
