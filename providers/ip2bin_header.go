package providers

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	ip2binHeaderSize   = 64
	ip2binMaxType      = 26
	ip2binProductCode  = 1
	ip2binIndexEntries = 1 << 16
	ip2binIndexRowSize = 8
)

// Field positions are 1-based column numbers inside of IPv4 row. Zero
// means that this database type has no such field.
var (
	ip2binCountryPosition = [ip2binMaxType + 1]uint8{
		0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	}
	ip2binRegionPosition = [ip2binMaxType + 1]uint8{
		0, 0, 0, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	}
	ip2binCityPosition = [ip2binMaxType + 1]uint8{
		0, 0, 0, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	}
	ip2binLatitudePosition = [ip2binMaxType + 1]uint8{
		0, 0, 0, 0, 0, 5, 5, 0, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	}
	ip2binLongitudePosition = [ip2binMaxType + 1]uint8{
		0, 0, 0, 0, 0, 6, 6, 0, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	}
)

// IP2BinInfo is a metadata from IP2Location BIN header.
type IP2BinInfo struct {
	Type        uint8     `json:"type"`
	Columns     uint8     `json:"columns"`
	Date        time.Time `json:"date"`
	IPv4Count   uint32    `json:"ipv4_count"`
	IPv6Count   uint32    `json:"ipv6_count"`
	ProductCode uint8     `json:"product_code"`

	ipv4Base      uint32
	ipv4IndexBase uint32
}

func (i IP2BinInfo) rowSize() int {
	return int(i.Columns) * 4
}

func (i IP2BinInfo) requiredColumns() uint8 {
	rv := ip2binCountryPosition[i.Type]

	for _, v := range []uint8{
		ip2binRegionPosition[i.Type],
		ip2binCityPosition[i.Type],
		ip2binLatitudePosition[i.Type],
		ip2binLongitudePosition[i.Type],
	} {
		if v > rv {
			rv = v
		}
	}

	return rv
}

func parseIP2BinHeader(data []byte) (IP2BinInfo, error) {
	rv := IP2BinInfo{}

	if len(data) < ip2binHeaderSize {
		return rv, fmt.Errorf("header has %d bytes: %w", len(data), ErrTruncated)
	}

	rv.Type = data[0]
	rv.Columns = data[1]
	rv.Date = time.Date(2000+int(data[2]), time.Month(data[3]), int(data[4]), 0, 0, 0, 0, time.UTC)
	rv.IPv4Count = binary.LittleEndian.Uint32(data[5:])
	rv.ipv4Base = binary.LittleEndian.Uint32(data[9:])
	rv.IPv6Count = binary.LittleEndian.Uint32(data[13:])
	rv.ipv4IndexBase = binary.LittleEndian.Uint32(data[21:])
	rv.ProductCode = data[29]

	switch {
	case rv.Type == 0 || rv.Type > ip2binMaxType:
		return rv, fmt.Errorf("database type %d: %w", rv.Type, ErrUnsupportedFormat)
	case data[2] >= 21 && rv.ProductCode != ip2binProductCode:
		return rv, fmt.Errorf("product code %d: %w", rv.ProductCode, ErrUnsupportedFormat)
	case rv.Columns < rv.requiredColumns():
		return rv, fmt.Errorf("database type %d cannot have %d columns: %w",
			rv.Type, rv.Columns, ErrUnsupportedFormat)
	case rv.IPv4Count == 0:
		return rv, ErrNoRanges
	case rv.ipv4Base == 0:
		return rv, fmt.Errorf("IPv4 table is not defined: %w", ErrUnsupportedFormat)
	}

	// a table has count rows and IPFrom of a terminator row
	tableEnd := uint64(rv.ipv4Base-1) + uint64(rv.IPv4Count)*uint64(rv.rowSize()) + 4
	if tableEnd > uint64(len(data)) {
		return rv, fmt.Errorf("IPv4 table ends at %d, file has %d bytes: %w",
			tableEnd, len(data), ErrTruncated)
	}

	if rv.ipv4IndexBase > 0 {
		indexEnd := uint64(rv.ipv4IndexBase-1) + ip2binIndexEntries*ip2binIndexRowSize
		if indexEnd > uint64(len(data)) {
			return rv, fmt.Errorf("IPv4 index ends at %d, file has %d bytes: %w",
				indexEnd, len(data), ErrTruncated)
		}
	}

	return rv, nil
}
