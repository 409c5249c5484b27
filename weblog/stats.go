package weblog

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultIQRFactor is a classic Tukey fence multiplier.
const DefaultIQRFactor = 1.5

// Measure is a measure of central tendency used by moving windows.
type Measure string

const (
	MeasureMean   Measure = "mean"
	MeasureMedian Measure = "median"
)

// Measures returns a list of supported measures.
func Measures() []Measure {
	return []Measure{MeasureMean, MeasureMedian}
}

// ParseMeasure converts a string into a Measure.
func ParseMeasure(value string) (Measure, error) {
	measure := Measure(strings.ToLower(strings.TrimSpace(value)))

	for _, v := range Measures() {
		if v == measure {
			return measure, nil
		}
	}

	names := make([]string, 0, len(Measures()))
	for _, v := range Measures() {
		names = append(names, string(v))
	}

	return "", fmt.Errorf("%w %q, valid measures are: %s",
		ErrInvalidMeasure, value, strings.Join(names, ", "))
}

func sortedCopy(values []float64) []float64 {
	rv := make([]float64, len(values))
	copy(rv, values)
	sort.Float64s(rv)

	return rv
}

// Quantile computes q-th quantile with linear interpolation between
// closest ranks. NaN is returned for empty input.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}

	return quantileSorted(sortedCopy(values), q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	position := float64(len(sorted)-1) * q
	lower := math.Floor(position)
	upper := math.Ceil(position)

	if lower == upper {
		return sorted[int(lower)]
	}

	fraction := position - lower

	return sorted[int(lower)] + (sorted[int(upper)]-sorted[int(lower)])*fraction
}

// Quartiles returns the first quartile, median and the third quartile.
func Quartiles(values []float64) (float64, float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}

	sorted := sortedCopy(values)

	return quantileSorted(sorted, 0.25), quantileSorted(sorted, 0.5), quantileSorted(sorted, 0.75)
}

// IQROutliers returns indexes of values outside of
// [Q1 - k*IQR, Q3 + k*IQR]. If k is not positive, DefaultIQRFactor
// is used.
func IQROutliers(values []float64, k float64) []int {
	if k <= 0 {
		k = DefaultIQRFactor
	}

	q1, _, q3 := Quartiles(values)
	iqr := q3 - q1
	lower := q1 - k*iqr
	upper := q3 + k*iqr
	rv := []int{}

	for i, v := range values {
		if v < lower || v > upper {
			rv = append(rv, i)
		}
	}

	return rv
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// MeanAbsDeviation is a mean absolute deviation around the mean.
func MeanAbsDeviation(values []float64) float64 {
	mean := Mean(values)
	deviations := make([]float64, len(values))

	for i, v := range values {
		deviations[i] = math.Abs(v - mean)
	}

	return Mean(deviations)
}

// MedianAbsDeviation is a median absolute deviation around the median.
func MedianAbsDeviation(values []float64) float64 {
	median := Median(values)
	deviations := make([]float64, len(values))

	for i, v := range values {
		deviations[i] = math.Abs(v - median)
	}

	return Median(deviations)
}

// Deviation computes absolute deviation with a given measure.
func Deviation(values []float64, measure Measure) (float64, error) {
	switch measure {
	case MeasureMean:
		return MeanAbsDeviation(values), nil
	case MeasureMedian:
		return MedianAbsDeviation(values), nil
	}

	_, err := ParseMeasure(string(measure))

	return math.NaN(), err
}

// MovingAverage computes a rolling measure over a window. First
// window-1 values are NaN since their windows are incomplete.
func MovingAverage(series []float64, window int, measure Measure) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}

	var agg func([]float64) float64

	switch measure {
	case MeasureMean:
		agg = Mean
	case MeasureMedian:
		agg = Median
	default:
		_, err := ParseMeasure(string(measure))

		return nil, err
	}

	rv := make([]float64, len(series))

	for i := range series {
		if i+1 < window {
			rv[i] = math.NaN()
		} else {
			rv[i] = agg(series[i+1-window : i+1])
		}
	}

	return rv, nil
}

// Bounds returns a confidence band around a rolling series. Bounds of
// NaN values are NaN.
func Bounds(rolling []float64, deviation float64) ([]float64, []float64) {
	lower := make([]float64, len(rolling))
	upper := make([]float64, len(rolling))

	for i, v := range rolling {
		lower[i] = v - deviation
		upper[i] = v + deviation
	}

	return lower, upper
}

// Outliers returns indexes of values strictly outside of bounds.
// Comparisons with NaN bounds are always false so incomplete windows
// never produce outliers.
func Outliers(values, lower, upper []float64) []int {
	rv := []int{}

	for i, v := range values {
		if i >= len(lower) || i >= len(upper) {
			break
		}

		if v < lower[i] || v > upper[i] {
			rv = append(rv, i)
		}
	}

	return rv
}

// Summary is a short description of a numeric series.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Q1    float64 `json:"q1"`
	Q2    float64 `json:"median"`
	Q3    float64 `json:"q3"`
	Max   float64 `json:"max"`
}

// Describe builds a summary of values. Empty input gives NaN fields.
func Describe(values []float64) Summary {
	rv := Summary{Count: len(values)}
	rv.Q1, rv.Q2, rv.Q3 = Quartiles(values)
	rv.Mean = Mean(values)

	if len(values) == 0 {
		rv.Min = math.NaN()
		rv.Max = math.NaN()

		return rv
	}

	sorted := sortedCopy(values)
	rv.Min = sorted[0]
	rv.Max = sorted[len(sorted)-1]

	return rv
}
