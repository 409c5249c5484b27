package providers_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"net"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type binRow struct {
	start    string
	end      string
	location geolib.LocationRecord
}

var (
	binColumns = map[uint8]uint8{1: 2, 3: 4, 5: 6}

	testLocationDE = geolib.LocationRecord{
		CountryCode: "DE",
		CountryName: "Germany",
		Region:      "Berlin",
		City:        "Berlin",
		Latitude:    52.52,
		Longitude:   13.405,
	}
	testLocationUS = geolib.LocationRecord{
		CountryCode: "US",
		CountryName: "United States of America",
		Region:      "California",
		City:        "Mountain View",
		Latitude:    37.386,
		Longitude:   -122.084,
	}
	testLocationBR = geolib.LocationRecord{
		CountryCode: "BR",
		CountryName: "Brazil",
		Region:      "Sao Paulo",
		City:        "Sao Paulo",
		Latitude:    -23.547,
		Longitude:   -46.636,
	}

	testBinRows = []binRow{
		{start: "80.0.0.0", end: "80.0.0.255", location: testLocationDE},
		{start: "192.168.0.0", end: "192.168.255.255", location: testLocationUS},
		{start: "200.0.0.0", end: "255.255.255.255", location: testLocationBR},
	}
)

func ipToUint32(value string) uint32 {
	rv, _ := geolib.IPv4ToUint32(net.ParseIP(value))

	return rv
}

type binTableRow struct {
	from     uint32
	location *geolib.LocationRecord
}

// buildIP2Bin writes IP2Location BIN layout: a header, IPv4 table with
// a terminator row, strings and an optional IPv4 index. Gaps between
// given rows are filled with dash rows.
func buildIP2Bin(dbType uint8, withIndex bool, rows []binRow) []byte {
	columns := binColumns[dbType]
	rowSize := int(columns) * 4
	table := []binTableRow{}
	current := uint64(0)

	for i := range rows {
		start := ipToUint32(rows[i].start)
		end := ipToUint32(rows[i].end)

		if uint64(start) > current {
			table = append(table, binTableRow{from: uint32(current)})
		}

		table = append(table, binTableRow{from: start, location: &rows[i].location})
		current = uint64(end) + 1
	}

	if current < math.MaxUint32 {
		table = append(table, binTableRow{from: uint32(current)})
	}

	count := len(table)
	stringsStart := uint32(64 + (count+1)*rowSize)
	strs := bytes.Buffer{}

	addString := func(value string) uint32 {
		ptr := stringsStart + uint32(strs.Len())

		strs.WriteByte(byte(len(value)))
		strs.WriteString(value)

		return ptr
	}
	addCountry := func(short, long string) uint32 {
		ptr := stringsStart + uint32(strs.Len())
		padded := make([]byte, 2)

		copy(padded, short)
		strs.WriteByte(byte(len(short)))
		strs.Write(padded)
		strs.WriteByte(byte(len(long)))
		strs.WriteString(long)

		return ptr
	}

	dashCountry := addCountry("-", "-")
	dash := addString("-")
	tableData := make([]byte, (count+1)*rowSize)

	writeRow := func(idx int, from uint32, location *geolib.LocationRecord) {
		row := tableData[idx*rowSize : (idx+1)*rowSize]
		country, region, city := dashCountry, dash, dash

		var lat, lon float32

		if location != nil {
			country = addCountry(location.CountryCode, location.CountryName)
			region = addString(location.Region)
			city = addString(location.City)
			lat = float32(location.Latitude)
			lon = float32(location.Longitude)
		}

		binary.LittleEndian.PutUint32(row[0:], from)
		binary.LittleEndian.PutUint32(row[4:], country)

		if dbType >= 3 {
			binary.LittleEndian.PutUint32(row[8:], region)
			binary.LittleEndian.PutUint32(row[12:], city)
		}

		if dbType >= 5 {
			binary.LittleEndian.PutUint32(row[16:], math.Float32bits(lat))
			binary.LittleEndian.PutUint32(row[20:], math.Float32bits(lon))
		}
	}

	for idx, v := range table {
		writeRow(idx, v.from, v.location)
	}

	writeRow(count, math.MaxUint32, nil)

	header := make([]byte, 64)
	header[0] = dbType
	header[1] = columns
	header[2] = 24
	header[3] = 1
	header[4] = 15
	binary.LittleEndian.PutUint32(header[5:], uint32(count))
	binary.LittleEndian.PutUint32(header[9:], 65)
	header[29] = 1

	rv := bytes.Buffer{}
	rv.Write(header)
	rv.Write(tableData)
	rv.Write(strs.Bytes())

	if withIndex {
		binary.LittleEndian.PutUint32(header[21:], uint32(rv.Len()+1))
		copy(rv.Bytes(), header)

		rowOf := func(value uint32) uint32 {
			if value == math.MaxUint32 {
				value--
			}

			idx := 0

			for i, v := range table {
				if v.from <= value {
					idx = i
				}
			}

			return uint32(idx)
		}

		entry := make([]byte, 8)

		for key := uint32(0); key < 1<<16; key++ {
			binary.LittleEndian.PutUint32(entry[0:], rowOf(key<<16))
			binary.LittleEndian.PutUint32(entry[4:], rowOf(key<<16|0xffff))
			rv.Write(entry)
		}
	}

	return rv.Bytes()
}

type FsTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (suite *FsTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
}

func (suite *FsTestSuite) WriteFile(path string, data []byte) {
	suite.Require().NoError(afero.WriteFile(suite.fs, path, data, 0o644))
}
