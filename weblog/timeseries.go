package weblog

import (
	"fmt"
	"time"
)

const (
	// DefaultInterval is a default bucket size of a time series.
	DefaultInterval = time.Hour

	// MaxBuckets limits a length of a time series including empty
	// buckets.
	MaxBuckets = 100000
)

// TimePoint is a number of hits in the interval started at Time.
type TimePoint struct {
	Time  time.Time `json:"time"`
	Count int       `json:"count"`
}

// Bucket builds a time series of hits per interval. Time is truncated
// in UTC, empty intervals between first and last hit are filled with
// zero counts. Records without time are ignored. If a series would be
// longer than MaxBuckets, ErrTooManyBuckets is returned.
func Bucket(records []Record, interval time.Duration) ([]TimePoint, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	counters := map[time.Time]int{}

	var first, last time.Time

	for i := range records {
		if records[i].Time.IsZero() {
			continue
		}

		key := records[i].Time.UTC().Truncate(interval)

		if len(counters) == 0 || key.Before(first) {
			first = key
		}

		if len(counters) == 0 || key.After(last) {
			last = key
		}

		counters[key]++
	}

	if len(counters) == 0 {
		return []TimePoint{}, nil
	}

	// Sub on far apart times saturates so huge spans are still caught.
	if buckets := last.Sub(first) / interval; buckets >= MaxBuckets {
		return nil, fmt.Errorf("%w: %s - %s by %s", ErrTooManyBuckets,
			first.Format(time.RFC3339), last.Format(time.RFC3339), interval)
	}

	rv := []TimePoint{}

	for key := first; !key.After(last); key = key.Add(interval) {
		rv = append(rv, TimePoint{
			Time:  key,
			Count: counters[key],
		})
	}

	return rv, nil
}

// Counts returns counts of a time series as floats.
func Counts(points []TimePoint) []float64 {
	rv := make([]float64, len(points))

	for i, v := range points {
		rv[i] = float64(v.Count)
	}

	return rv
}
