package geolib

import (
	"fmt"
	"net"
	"sort"
)

// RangeEntry is a single row of RangeTable.
type RangeEntry struct {
	Range    IPRange
	Location *LocationRecord
}

// RangeTable is an in-memory dataset of sorted non-overlapping IPv4
// ranges. Lookups are binary searches over range ends.
type RangeTable struct {
	name      string
	ranges    []IPRange
	locations []*LocationRecord
}

func (r *RangeTable) Name() string {
	return r.name
}

// Len returns a number of ranges in the table.
func (r *RangeTable) Len() int {
	return len(r.ranges)
}

func (r *RangeTable) Lookup(ip net.IP) (LookupResult, error) {
	value, ok := IPv4ToUint32(ip)
	if !ok {
		return NotFound, nil
	}

	idx, ok := r.find(value)
	if !ok {
		return NotFound, nil
	}

	matched := r.ranges[idx]

	return Found(*r.locations[idx], &matched), nil
}

func (r *RangeTable) Close() error {
	return nil
}

func (r *RangeTable) find(value uint32) (int, bool) {
	idx := sort.Search(len(r.ranges), func(i int) bool {
		return r.ranges[i].End >= value
	})

	if idx < len(r.ranges) && r.ranges[idx].Start <= value {
		return idx, true
	}

	return 0, false
}

// NewRangeTable builds a table from entries which are expected to be
// sorted by start address and to be disjoint. This order is a property
// of upstream data; entries are verified, never reordered.
func NewRangeTable(name string, entries []RangeEntry) (*RangeTable, error) {
	rv := &RangeTable{
		name:      name,
		ranges:    make([]IPRange, 0, len(entries)),
		locations: make([]*LocationRecord, 0, len(entries)),
	}

	for i, v := range entries {
		switch {
		case v.Location == nil:
			return nil, fmt.Errorf("entry %d has no location", i)
		case v.Range.Start > v.Range.End:
			return nil, fmt.Errorf("entry %d (%s): %w", i, v.Range, ErrUnsortedRanges)
		case i > 0 && v.Range.Start <= entries[i-1].Range.End:
			return nil, fmt.Errorf("entry %d (%s) after %s: %w",
				i, v.Range, entries[i-1].Range, ErrUnsortedRanges)
		}

		rv.ranges = append(rv.ranges, v.Range)
		rv.locations = append(rv.locations, v.Location)
	}

	return rv, nil
}

type namedDataset struct {
	Dataset

	name string
}

func (n namedDataset) Name() string {
	return n.name
}

// WithName returns a dataset which reports a given name.
func WithName(dataset Dataset, name string) Dataset {
	if name == "" || name == dataset.Name() {
		return dataset
	}

	return namedDataset{
		Dataset: dataset,
		name:    name,
	}
}
