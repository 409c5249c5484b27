package providers

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"sort"
	"strings"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/spf13/afero"
)

const ip2binUnavailable = "This parameter is unavailable"

// IP2Bin is a dataset which is backed by IP2Location BIN file loaded
// into memory. Only IPv4 table is used.
//
// Rows are sorted by IPFrom so a range of row i is
// [IPFrom(i), IPFrom(i+1) - 1]. The file has to contain IPFrom of a
// row after the last one. Rows with a dash instead of a country are
// gaps.
type IP2Bin struct {
	name string
	info IP2BinInfo
	data []byte
}

func (i *IP2Bin) Name() string {
	return i.name
}

// Info returns a metadata of BIN file.
func (i *IP2Bin) Info() IP2BinInfo {
	return i.info
}

// Len returns a number of IPv4 rows.
func (i *IP2Bin) Len() int {
	return int(i.info.IPv4Count)
}

func (i *IP2Bin) Close() error {
	return nil
}

func (i *IP2Bin) Lookup(ip net.IP) (geolib.LookupResult, error) {
	value, ok := geolib.IPv4ToUint32(ip)
	if !ok {
		return geolib.NotFound, nil
	}

	// the last row ends at MaxUint32 which is IPFrom of a terminator
	search := value
	if search == math.MaxUint32 {
		search--
	}

	low, high := i.searchBounds(search)

	idx, ok := i.find(search, low, high)
	if !ok {
		return geolib.NotFound, nil
	}

	location, err := i.location(idx)
	if err != nil {
		return geolib.NotFound, fmt.Errorf("cannot read row %d: %w", idx, err)
	}

	if !location.Known() {
		return geolib.NotFound, nil
	}

	ipRange := geolib.IPRange{
		Start: i.ipFrom(idx),
		End:   i.ipFrom(idx+1) - 1,
	}

	if idx == i.Len()-1 && i.ipFrom(idx+1) == math.MaxUint32 {
		ipRange.End = math.MaxUint32
	}

	return geolib.Found(location, &ipRange), nil
}

// searchBounds narrows down a binary search with IPv4 index if file
// has it. Index is keyed by the first 2 octets.
func (i *IP2Bin) searchBounds(value uint32) (int, int) {
	low, high := 0, i.Len()-1

	if i.info.ipv4IndexBase == 0 {
		return low, high
	}

	offset := int(i.info.ipv4IndexBase-1) + int(value>>16)*ip2binIndexRowSize
	indexLow := int(binary.LittleEndian.Uint32(i.data[offset:]))
	indexHigh := int(binary.LittleEndian.Uint32(i.data[offset+4:]))

	if indexHigh > high {
		indexHigh = high
	}

	if indexLow > indexHigh {
		return low, high
	}

	return indexLow, indexHigh
}

func (i *IP2Bin) find(value uint32, low, high int) (int, bool) {
	offset := sort.Search(high-low+1, func(n int) bool {
		return i.ipFrom(low+n+1) > value
	})
	idx := low + offset

	if idx <= high && i.ipFrom(idx) <= value {
		return idx, true
	}

	return 0, false
}

func (i *IP2Bin) rowOffset(idx int) int {
	return int(i.info.ipv4Base-1) + idx*i.info.rowSize()
}

func (i *IP2Bin) ipFrom(idx int) uint32 {
	return binary.LittleEndian.Uint32(i.data[i.rowOffset(idx):])
}

func (i *IP2Bin) column(idx int, position uint8) uint32 {
	return binary.LittleEndian.Uint32(i.data[i.rowOffset(idx)+int(position-1)*4:])
}

func (i *IP2Bin) location(idx int) (geolib.LocationRecord, error) {
	rv := geolib.LocationRecord{}
	dbType := i.info.Type

	countryPtr := i.column(idx, ip2binCountryPosition[dbType])

	countryShort, err := i.readString(countryPtr)
	if err != nil {
		return rv, err
	}

	rv.CountryCode = geolib.NormalizeAlpha2Code(normalizeIP2BinValue(countryShort))
	if rv.CountryCode == "" {
		return rv, nil
	}

	countryLong, err := i.readString(countryPtr + 3)
	if err != nil {
		return rv, err
	}

	rv.CountryName = normalizeIP2BinValue(countryLong)

	if pos := ip2binRegionPosition[dbType]; pos > 0 {
		value, err := i.readString(i.column(idx, pos))
		if err != nil {
			return rv, err
		}

		rv.Region = normalizeIP2BinValue(value)
	}

	if pos := ip2binCityPosition[dbType]; pos > 0 {
		value, err := i.readString(i.column(idx, pos))
		if err != nil {
			return rv, err
		}

		rv.City = normalizeIP2BinValue(value)
	}

	if pos := ip2binLatitudePosition[dbType]; pos > 0 {
		rv.Latitude = float64(math.Float32frombits(i.column(idx, pos)))
	}

	if pos := ip2binLongitudePosition[dbType]; pos > 0 {
		rv.Longitude = float64(math.Float32frombits(i.column(idx, pos)))
	}

	return rv, nil
}

// readString reads a length-prefixed string. Pointers are 0-based
// offsets, unlike table bases.
func (i *IP2Bin) readString(ptr uint32) (string, error) {
	pos := int(ptr)

	if pos >= len(i.data) {
		return "", fmt.Errorf("string pointer %d is out of file: %w", ptr, errCorruptedRecord)
	}

	length := int(i.data[pos])
	if pos+1+length > len(i.data) {
		return "", fmt.Errorf("string at %d is out of file: %w", ptr, errCorruptedRecord)
	}

	return string(i.data[pos+1 : pos+1+length]), nil
}

func normalizeIP2BinValue(value string) string {
	value = strings.TrimSpace(value)

	if value == "-" || strings.HasPrefix(value, ip2binUnavailable) {
		return ""
	}

	return value
}

// NewIP2Bin parses IP2Location BIN content.
func NewIP2Bin(name string, data []byte) (*IP2Bin, error) {
	info, err := parseIP2BinHeader(data)
	if err != nil {
		return nil, err
	}

	rv := &IP2Bin{
		name: name,
		info: info,
		data: data,
	}

	previous := rv.ipFrom(0)

	for idx := 1; idx <= rv.Len(); idx++ {
		current := rv.ipFrom(idx)

		if current <= previous {
			return nil, fmt.Errorf("row %d starts at %s after %s: %w",
				idx,
				geolib.Uint32ToIPv4(current),
				geolib.Uint32ToIPv4(previous),
				geolib.ErrUnsortedRanges)
		}

		previous = current
	}

	return rv, nil
}

// OpenIP2Bin loads IP2Location BIN file into memory. All failures are
// reported as geolib.DatasetLoadError.
func OpenIP2Bin(fs afero.Fs, path string) (*IP2Bin, error) {
	data, err := readDatasetFile(fs, path)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	rv, err := NewIP2Bin(NameIP2Bin, data)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	return rv, nil
}
