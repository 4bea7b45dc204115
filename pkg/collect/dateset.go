// Package collect holds the ordered collections produced by a scan: sorted date
// collections, per-file date records and the aggregate across a whole tree.
//
// Every type here is immutable once built. Construction sorts; nothing
// downstream ever relies on the order results arrived in.
package collect

import (
	"iter"
	"slices"

	"github.com/stackvity/datescan/pkg/dates"
)

// SortedDates is an ascending sequence of dates. Depending on how it was built
// it either holds each date once (NewDateSet) or keeps every occurrence (NewDateList).
type SortedDates struct {
	list    []dates.Date
	deduped bool
}

// NewDateSet sorts unordered ascending and removes exact duplicates.
// The input slice is not modified.
func NewDateSet(unordered []dates.Date) SortedDates {
	list := sortedCopy(unordered)
	return SortedDates{list: slices.Compact(list), deduped: true}
}

// NewDateList sorts unordered ascending and keeps duplicates.
// The input slice is not modified.
func NewDateList(unordered []dates.Date) SortedDates {
	return SortedDates{list: sortedCopy(unordered)}
}

func sortedCopy(unordered []dates.Date) []dates.Date {
	list := slices.Clone(unordered)
	slices.SortStableFunc(list, dates.Compare)
	return list
}

// Len returns the number of dates.
func (s SortedDates) Len() int { return len(s.list) }

// IsEmpty reports whether the collection holds no dates.
func (s SortedDates) IsEmpty() bool { return len(s.list) == 0 }

// Deduplicated reports whether the collection was built with set semantics.
func (s SortedDates) Deduplicated() bool { return s.deduped }

// At returns the i-th oldest date. It panics if i is out of range.
func (s SortedDates) At(i int) dates.Date { return s.list[i] }

// First returns the oldest date.
func (s SortedDates) First() (dates.Date, bool) {
	if len(s.list) == 0 {
		return dates.Date{}, false
	}
	return s.list[0], true
}

// Last returns the newest date.
func (s SortedDates) Last() (dates.Date, bool) {
	if len(s.list) == 0 {
		return dates.Date{}, false
	}
	return s.list[len(s.list)-1], true
}

// Slice returns a copy of the dates in ascending order.
func (s SortedDates) Slice() []dates.Date { return slices.Clone(s.list) }

// All iterates over the dates in ascending order.
func (s SortedDates) All() iter.Seq[dates.Date] {
	return slices.Values(s.list)
}

// Equal reports whether both collections hold the same dates in the same multiplicity.
func (s SortedDates) Equal(other SortedDates) bool {
	return slices.Equal(s.list, other.list)
}

// Compare orders two collections: by their oldest dates, then by their newest
// dates. An empty collection sorts before any non-empty one and equal to another
// empty one. Collections that agree on both ends compare equal.
func (s SortedDates) Compare(other SortedDates) int {
	switch {
	case s.IsEmpty() && other.IsEmpty():
		return 0
	case s.IsEmpty():
		return -1
	case other.IsEmpty():
		return 1
	}
	if c := dates.Compare(s.list[0], other.list[0]); c != 0 {
		return c
	}
	return dates.Compare(s.list[len(s.list)-1], other.list[len(other.list)-1])
}
