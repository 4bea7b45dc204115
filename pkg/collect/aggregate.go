package collect

import (
	"iter"
	"slices"
)

// Stats accounts for every file a scan dispatched.
// Collected + Empty + Undecodable == Dispatched for a completed scan.
type Stats struct {
	Dispatched  int `json:"dispatched" yaml:"dispatched"`
	Collected   int `json:"collected" yaml:"collected"`
	Empty       int `json:"empty" yaml:"empty"`
	Undecodable int `json:"undecodable" yaml:"undecodable"`
}

// Add returns the field-wise sum of s and other.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Dispatched:  s.Dispatched + other.Dispatched,
		Collected:   s.Collected + other.Collected,
		Empty:       s.Empty + other.Empty,
		Undecodable: s.Undecodable + other.Undecodable,
	}
}

// Aggregate is the sorted set of file records produced by one or more scans.
type Aggregate struct {
	files []FileDates
	stats Stats
}

// NewAggregate sorts records ascending by FileDates.Compare.
func NewAggregate(records []FileDates, stats Stats) *Aggregate {
	files := slices.Clone(records)
	slices.SortStableFunc(files, CompareFileDates)
	return &Aggregate{files: files, stats: stats}
}

// Merge combines several aggregates into one. Stats are summed; when the same
// path appears in more than one aggregate only its first record is kept.
func Merge(aggs ...*Aggregate) *Aggregate {
	var (
		files []FileDates
		stats Stats
		seen  = make(map[string]struct{})
	)
	for _, agg := range aggs {
		if agg == nil {
			continue
		}
		stats = stats.Add(agg.stats)
		for _, f := range agg.files {
			if _, dup := seen[f.path]; dup {
				continue
			}
			seen[f.path] = struct{}{}
			files = append(files, f)
		}
	}
	return NewAggregate(files, stats)
}

// Count returns the number of file records.
func (a *Aggregate) Count() int { return len(a.files) }

// IsEmpty reports whether the aggregate holds no records.
func (a *Aggregate) IsEmpty() bool { return len(a.files) == 0 }

// Stats returns the accounting of the scan(s) that produced a.
func (a *Aggregate) Stats() Stats { return a.stats }

// Files returns a copy of the records in ascending order.
func (a *Aggregate) Files() []FileDates { return slices.Clone(a.files) }

// All iterates over the records in ascending order.
func (a *Aggregate) All() iter.Seq[FileDates] { return slices.Values(a.files) }

// Oldest returns the first record.
func (a *Aggregate) Oldest() (FileDates, bool) {
	if a.IsEmpty() {
		return FileDates{}, false
	}
	return a.files[0], true
}

// Newest returns the last record.
func (a *Aggregate) Newest() (FileDates, bool) {
	if a.IsEmpty() {
		return FileDates{}, false
	}
	return a.files[len(a.files)-1], true
}

// Median returns the record at index Count()/2.
func (a *Aggregate) Median() (FileDates, bool) {
	if a.IsEmpty() {
		return FileDates{}, false
	}
	return a.files[len(a.files)/2], true
}
