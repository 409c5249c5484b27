package weblog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"time",
	"clientip",
	"method",
	"uri_path",
	"status",
	"status_class",
	"bytes",
	"useragent",
	"referer",
	"country_short",
	"country_long",
	"region",
	"city",
	"latitude",
	"longitude",
}

// WriteCSV writes enriched records as CSV with a header row. Unknown
// coordinates are written as empty cells.
func WriteCSV(writer io.Writer, records []Record) error {
	csvWriter := csv.NewWriter(writer)

	if err := csvWriter.Write(csvHeader); err != nil {
		return fmt.Errorf("cannot write a header: %w", err)
	}

	for i := range records {
		if err := csvWriter.Write(csvRow(&records[i])); err != nil {
			return fmt.Errorf("cannot write row %d: %w", i+1, err)
		}
	}

	csvWriter.Flush()

	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("cannot flush csv: %w", err)
	}

	return nil
}

func csvRow(record *Record) []string {
	timestamp := ""
	if !record.Time.IsZero() {
		timestamp = record.Time.Format(time.RFC3339Nano)
	}

	latitude, longitude := "", ""
	if record.Located && (record.Location.Latitude != 0 || record.Location.Longitude != 0) {
		latitude = strconv.FormatFloat(record.Location.Latitude, 'f', -1, 64)
		longitude = strconv.FormatFloat(record.Location.Longitude, 'f', -1, 64)
	}

	return []string{
		timestamp,
		record.ClientIP,
		record.Method,
		record.URIPath,
		record.Status,
		record.StatusClass,
		strconv.FormatInt(record.Bytes, 10),
		record.UserAgent,
		record.Referer,
		record.Location.CountryCode,
		record.Location.CountryName,
		record.Location.Region,
		record.Location.City,
		latitude,
		longitude,
	}
}

// WriteJSONLines writes one JSON document per record.
func WriteJSONLines(writer io.Writer, records []Record) error {
	encoder := json.NewEncoder(writer)

	for i := range records {
		if err := encoder.Encode(&records[i]); err != nil {
			return fmt.Errorf("cannot encode record %d: %w", i+1, err)
		}
	}

	return nil
}
