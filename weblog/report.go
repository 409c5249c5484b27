package weblog

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// DefaultWindow is a default size of moving window in buckets.
const DefaultWindow = 24

// ReportOptions tune a report. Zero values fall back to defaults.
type ReportOptions struct {
	Top       int
	Interval  time.Duration
	Window    int
	Measure   Measure
	IQRFactor float64

	// Deviation is a measure of absolute deviation for moving average
	// bands. Measure is used if empty.
	Deviation Measure
}

// Report is an aggregated view of enriched weblog records.
type Report struct {
	Records       int          `json:"records"`
	Located       int          `json:"located"`
	Countries     []GroupCount `json:"countries"`
	Cities        []GroupCount `json:"cities"`
	StatusClasses []GroupCount `json:"status_classes"`
	Methods       []GroupCount `json:"methods"`
	Paths         []GroupCount `json:"paths"`
	Clients       []GroupCount `json:"clients"`
	Series        []TimePoint  `json:"series"`
	Summary       *Summary     `json:"summary,omitempty"`

	// Spikes are buckets outside of moving average band.
	Spikes []TimePoint `json:"spikes"`

	// IQROutliers are buckets outside of Tukey fences.
	IQROutliers []TimePoint `json:"iqr_outliers"`
}

// BuildReport aggregates records.
func BuildReport(records []Record, opts ReportOptions) (*Report, error) {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}

	if opts.Measure == "" {
		opts.Measure = MeasureMean
	}

	if opts.Deviation == "" {
		opts.Deviation = opts.Measure
	}

	deviationMeasure, err := ParseMeasure(string(opts.Deviation))
	if err != nil {
		return nil, fmt.Errorf("incorrect deviation: %w", err)
	}

	opts.Deviation = deviationMeasure

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	rv := &Report{
		Records:       len(records),
		Countries:     GroupBy(records, ByCountry, opts.Top),
		Cities:        GroupCities(records, opts.Top),
		StatusClasses: GroupBy(records, ByStatusClass, opts.Top),
		Methods:       GroupBy(records, ByMethod, opts.Top),
		Paths:         GroupBy(records, ByURIPath, opts.Top),
		Clients:       GroupBy(records, ByClientIP, opts.Top),
		Spikes:        []TimePoint{},
		IQROutliers:   []TimePoint{},
	}

	series, err := Bucket(records, opts.Interval)
	if err != nil {
		return nil, err
	}

	rv.Series = series

	for i := range records {
		if records[i].Located {
			rv.Located++
		}
	}

	counts := Counts(rv.Series)

	rolling, err := MovingAverage(counts, opts.Window, opts.Measure)
	if err != nil {
		return nil, err
	}

	if len(counts) == 0 {
		return rv, nil
	}

	summary := Describe(counts)
	rv.Summary = &summary

	deviation, err := Deviation(counts, opts.Deviation)
	if err != nil {
		return nil, err
	}

	lower, upper := Bounds(rolling, deviation)

	for _, idx := range Outliers(counts, lower, upper) {
		rv.Spikes = append(rv.Spikes, rv.Series[idx])
	}

	for _, idx := range IQROutliers(counts, opts.IQRFactor) {
		rv.IQROutliers = append(rv.IQROutliers, rv.Series[idx])
	}

	return rv, nil
}

// WriteText renders a report as aligned plain text tables.
func (r *Report) WriteText(writer io.Writer) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Records:\t%d\n", r.Records)
	fmt.Fprintf(tw, "Located:\t%d\n", r.Located)

	sections := []struct {
		title  string
		groups []GroupCount
	}{
		{"Countries", r.Countries},
		{"Cities", r.Cities},
		{"Status classes", r.StatusClasses},
		{"Methods", r.Methods},
		{"Paths", r.Paths},
		{"Clients", r.Clients},
	}

	for _, section := range sections {
		fmt.Fprintf(tw, "\n%s\n", section.title)

		for _, v := range section.groups {
			fmt.Fprintf(tw, "  %s\t%d\n", v.Key, v.Count)
		}
	}

	if r.Summary != nil {
		fmt.Fprintf(tw, "\nHits per bucket\n")
		fmt.Fprintf(tw, "  count\t%d\n", r.Summary.Count)
		fmt.Fprintf(tw, "  mean\t%.2f\n", r.Summary.Mean)
		fmt.Fprintf(tw, "  min\t%.0f\n", r.Summary.Min)
		fmt.Fprintf(tw, "  q1\t%.2f\n", r.Summary.Q1)
		fmt.Fprintf(tw, "  median\t%.2f\n", r.Summary.Q2)
		fmt.Fprintf(tw, "  q3\t%.2f\n", r.Summary.Q3)
		fmt.Fprintf(tw, "  max\t%.0f\n", r.Summary.Max)
	}

	points := []struct {
		title  string
		points []TimePoint
	}{
		{"Spikes", r.Spikes},
		{"IQR outliers", r.IQROutliers},
	}

	for _, section := range points {
		fmt.Fprintf(tw, "\n%s\n", section.title)

		for _, v := range section.points {
			fmt.Fprintf(tw, "  %s\t%d\n", v.Time.Format(time.RFC3339), v.Count)
		}
	}

	return tw.Flush()
}
