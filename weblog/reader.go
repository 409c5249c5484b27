package weblog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Columns maps record fields to CSV header names.
type Columns struct {
	Time      string `json:"time"`
	ClientIP  string `json:"clientip"`
	Method    string `json:"method"`
	URIPath   string `json:"uri_path"`
	Status    string `json:"status"`
	Bytes     string `json:"bytes"`
	UserAgent string `json:"useragent"`
	Referer   string `json:"referer"`
}

// DefaultColumns returns names of Splunk access_combined fields.
func DefaultColumns() Columns {
	return Columns{
		Time:      "_time",
		ClientIP:  "clientip",
		Method:    "method",
		URIPath:   "uri_path",
		Status:    "status",
		Bytes:     "bytes",
		UserAgent: "useragent",
		Referer:   "referer",
	}
}

// TimeLayouts are tried one by one to parse a timestamp. Numbers are
// treated as unix timestamps.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05",
	"02/Jan/2006:15:04:05 -0700",
}

// Access logs older than MinTime or from MaxTime on are treated as
// broken rows.
var (
	MinTime = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// maxUnixSeconds keeps float conversion of huge numbers away from
// int64 overflow.
const maxUnixSeconds = 1 << 40

// ReadStats tells how many rows were read and how many of them were
// fixed or dropped.
type ReadStats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
	Imputed int `json:"imputed"`
}

type columnIndexes struct {
	time      int
	clientIP  int
	method    int
	uriPath   int
	status    int
	bytes     int
	userAgent int
	referer   int
}

// Reader reads weblog CSV files with a header row.
type Reader struct {
	columns Columns
}

// Read reads a file from given filesystem.
func (r *Reader) Read(fs afero.Fs, path string) ([]Record, ReadStats, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, ReadStats{}, fmt.Errorf("cannot open %s: %w", path, err)
	}

	defer file.Close()

	return r.ReadFrom(bufio.NewReader(file))
}

// ReadFrom reads CSV content. Row problems never abort reading; only
// broken CSV syntax or missing required columns do.
func (r *Reader) ReadFrom(reader io.Reader) ([]Record, ReadStats, error) {
	stats := ReadStats{}
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("cannot read a header: %w", err)
	}

	indexes, err := r.mapColumns(header)
	if err != nil {
		return nil, stats, err
	}

	rv := []Record{}

	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, stats, fmt.Errorf("cannot read row %d: %w", stats.Rows+1, err)
		}

		stats.Rows++

		record, ok, imputed := parseRecord(row, indexes)
		if !ok {
			stats.Skipped++

			continue
		}

		if imputed {
			stats.Imputed++
		}

		rv = append(rv, record)
	}

	return rv, stats, nil
}

func (r *Reader) mapColumns(header []string) (columnIndexes, error) {
	positions := map[string]int{}

	for i, v := range header {
		// Excel likes to put BOM into the first cell
		v = strings.TrimPrefix(strings.TrimSpace(v), "\ufeff")
		positions[v] = i
	}

	find := func(name string) int {
		if idx, ok := positions[name]; ok && name != "" {
			return idx
		}

		return -1
	}

	rv := columnIndexes{
		time:      find(r.columns.Time),
		clientIP:  find(r.columns.ClientIP),
		method:    find(r.columns.Method),
		uriPath:   find(r.columns.URIPath),
		status:    find(r.columns.Status),
		bytes:     find(r.columns.Bytes),
		userAgent: find(r.columns.UserAgent),
		referer:   find(r.columns.Referer),
	}

	if rv.clientIP < 0 {
		return rv, fmt.Errorf("%w: %s", ErrMissingColumn, r.columns.ClientIP)
	}

	return rv, nil
}

func parseRecord(row []string, indexes columnIndexes) (Record, bool, bool) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[idx])
	}

	rv := Record{
		ClientIP:  field(indexes.clientIP),
		Method:    strings.ToUpper(field(indexes.method)),
		URIPath:   field(indexes.uriPath),
		UserAgent: field(indexes.userAgent),
		Referer:   field(indexes.referer),
	}

	if indexes.time >= 0 {
		timestamp, err := ParseTime(field(indexes.time))
		if err != nil {
			return rv, false, false
		}

		rv.Time = timestamp
	}

	imputed := false

	if indexes.status >= 0 {
		status := field(indexes.status)

		if code, err := strconv.Atoi(status); err == nil && code >= 100 && code <= 599 {
			rv.Status = status
			rv.StatusClass = StatusClass(status)
		} else {
			rv.StatusClass = StatusClassUnknown
			imputed = true
		}
	}

	if indexes.bytes >= 0 {
		value := field(indexes.bytes)

		if number, err := strconv.ParseInt(value, 10, 64); err == nil && number >= 0 {
			rv.Bytes = number
		} else {
			imputed = true
		}
	}

	return rv, true, imputed
}

// ParseTime parses a timestamp with one of TimeLayouts or as unix
// time. Timestamps outside of [MinTime, MaxTime) are rejected with
// ErrTimeOutOfRange.
func ParseTime(value string) (time.Time, error) {
	parsed, err := parseTime(strings.TrimSpace(value))
	if err != nil {
		return parsed, err
	}

	if parsed.Before(MinTime) || !parsed.Before(MaxTime) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimeOutOfRange, value)
	}

	return parsed, nil
}

func parseTime(value string) (time.Time, error) {
	if number, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(number) || math.Abs(number) > maxUnixSeconds {
			return time.Time{}, fmt.Errorf("%w: %q", ErrTimeOutOfRange, value)
		}

		seconds, fraction := math.Modf(number)

		return time.Unix(int64(seconds), int64(fraction*1e9)).UTC(), nil
	}

	for _, layout := range TimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", value)
}

// NewReader creates a reader. Empty column names fall back to
// defaults, except of optional columns which can be disabled with "-".
func NewReader(columns Columns) *Reader {
	defaults := DefaultColumns()
	pick := func(value, fallback string) string {
		switch value {
		case "":
			return fallback
		case "-":
			return ""
		}

		return value
	}

	return &Reader{
		columns: Columns{
			Time:      pick(columns.Time, defaults.Time),
			ClientIP:  pick(columns.ClientIP, defaults.ClientIP),
			Method:    pick(columns.Method, defaults.Method),
			URIPath:   pick(columns.URIPath, defaults.URIPath),
			Status:    pick(columns.Status, defaults.Status),
			Bytes:     pick(columns.Bytes, defaults.Bytes),
			UserAgent: pick(columns.UserAgent, defaults.UserAgent),
			Referer:   pick(columns.Referer, defaults.Referer),
		},
	}
}
