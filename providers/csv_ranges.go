package providers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/spf13/afero"
)

// CSV range files have one of 2 layouts:
//
//	start,end,country_code,country_name,region,city,latitude,longitude
//	cidr,country_code,country_name,region,city,latitude,longitude
//
// start and end are either dotted quads or numbers. Everything after
// a country code is optional. Lines starting with # are comments, a
// header line is skipped.
const csvRangesLocationFields = 6

// NewCSVRanges reads CSV range file into a range table.
func NewCSVRanges(name string, reader io.Reader) (*geolib.RangeTable, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comment = '#'
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	cache := newLocationCache()
	entries := []geolib.RangeEntry{}

	for line := 1; ; line++ {
		data, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("cannot read CSV: %w", err)
		}

		ipRange, rest, err := parseCSVRange(data)

		switch {
		case err != nil && line == 1:
			continue
		case err != nil:
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		location, err := parseCSVLocation(rest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if !location.Known() {
			continue
		}

		entries = append(entries, geolib.RangeEntry{
			Range:    ipRange,
			Location: cache.get(location),
		})
	}

	if len(entries) == 0 {
		return nil, ErrNoRanges
	}

	return geolib.NewRangeTable(name, entries)
}

func parseCSVRange(data []string) (geolib.IPRange, []string, error) {
	if len(data) > 0 && strings.Contains(data[0], "/") {
		_, network, err := net.ParseCIDR(strings.TrimSpace(data[0]))
		if err != nil {
			return geolib.IPRange{}, nil, fmt.Errorf("incorrect CIDR %s: %w", data[0], errCorruptedRecord)
		}

		ipRange := ipv4NetworkRange(network)
		if ipRange == nil {
			return geolib.IPRange{}, nil, fmt.Errorf("CIDR %s is not IPv4: %w", data[0], errCorruptedRecord)
		}

		return *ipRange, data[1:], nil
	}

	if len(data) < 3 {
		return geolib.IPRange{}, nil, fmt.Errorf("row has %d fields: %w", len(data), errCorruptedRecord)
	}

	start, err := parseCSVAddress(data[0])
	if err != nil {
		return geolib.IPRange{}, nil, err
	}

	end, err := parseCSVAddress(data[1])
	if err != nil {
		return geolib.IPRange{}, nil, err
	}

	return geolib.IPRange{Start: start, End: end}, data[2:], nil
}

func parseCSVAddress(value string) (uint32, error) {
	value = strings.TrimSpace(value)

	if number, err := strconv.ParseUint(value, 10, 32); err == nil {
		return uint32(number), nil
	}

	if ip := net.ParseIP(value); ip != nil {
		if number, ok := geolib.IPv4ToUint32(ip); ok {
			return number, nil
		}
	}

	return 0, fmt.Errorf("incorrect IPv4 address %q: %w", value, errCorruptedRecord)
}

func parseCSVLocation(data []string) (geolib.LocationRecord, error) {
	fields := make([]string, csvRangesLocationFields)

	for i := 0; i < len(data) && i < len(fields); i++ {
		fields[i] = normalizeIP2BinValue(data[i])
	}

	rv := geolib.LocationRecord{
		CountryCode: geolib.NormalizeAlpha2Code(fields[0]),
		CountryName: fields[1],
		Region:      fields[2],
		City:        fields[3],
	}

	var err error

	if fields[4] != "" {
		if rv.Latitude, err = strconv.ParseFloat(fields[4], 64); err != nil {
			return rv, fmt.Errorf("incorrect latitude %q: %w", fields[4], errCorruptedRecord)
		}
	}

	if fields[5] != "" {
		if rv.Longitude, err = strconv.ParseFloat(fields[5], 64); err != nil {
			return rv, fmt.Errorf("incorrect longitude %q: %w", fields[5], errCorruptedRecord)
		}
	}

	return rv, nil
}

// OpenCSVRanges loads CSV range file. Compressed files are supported.
func OpenCSVRanges(fs afero.Fs, path string) (*geolib.RangeTable, error) {
	data, err := readDatasetFile(fs, path)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	table, err := NewCSVRanges(NameCSV, bytes.NewReader(data))
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	return table, nil
}
