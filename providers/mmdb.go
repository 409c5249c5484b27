package providers

import (
	"fmt"
	"net"
	"strings"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
	"github.com/spf13/afero"
)

// MMDB is a dataset backed by MaxMind DB file (GeoLite2 City/Country,
// DB-IP lite). Both IPv4 and IPv6 are supported. Ranges are reported
// for IPv4 networks only.
type MMDB struct {
	dbReader *maxminddb.Reader
}

func (m *MMDB) Name() string {
	return NameMMDB
}

func (m *MMDB) Lookup(ip net.IP) (geolib.LookupResult, error) {
	record := geoip2.City{}

	network, ok, err := m.dbReader.LookupNetwork(ip, &record)
	if err != nil {
		return geolib.NotFound, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	location := geolib.LocationRecord{
		CountryCode: geolib.NormalizeAlpha2Code(record.Country.IsoCode),
	}

	if !ok || !location.Known() {
		return geolib.NotFound, nil
	}

	location.CountryName = record.Country.Names["en"]
	location.City = record.City.Names["en"]
	location.Latitude = record.Location.Latitude
	location.Longitude = record.Location.Longitude

	if len(record.Subdivisions) > 0 {
		location.Region = record.Subdivisions[0].Names["en"]
	}

	return geolib.Found(location, ipv4NetworkRange(network)), nil
}

func (m *MMDB) Close() error {
	return m.dbReader.Close()
}

// Metadata returns a description of the database.
func (m *MMDB) Metadata() maxminddb.Metadata {
	return m.dbReader.Metadata
}

func ipv4NetworkRange(network *net.IPNet) *geolib.IPRange {
	if network == nil {
		return nil
	}

	start, ok := geolib.IPv4ToUint32(network.IP)
	if !ok {
		return nil
	}

	ones, bits := network.Mask.Size()

	switch {
	case bits == 8*net.IPv6len && ones >= 96:
		ones -= 96
	case bits != 8*net.IPv4len:
		return nil
	}

	size := uint64(1) << uint(32-ones)

	return &geolib.IPRange{
		Start: start,
		End:   uint32(uint64(start) + size - 1),
	}
}

// OpenMMDB loads MaxMind DB file into memory and verifies it.
func OpenMMDB(fs afero.Fs, path string) (*MMDB, error) {
	data, err := readDatasetFile(fs, path)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	dbReader, err := maxminddb.FromBytes(data)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
	}

	if err := dbReader.Verify(); err != nil {
		dbReader.Close()

		return nil, geolib.NewDatasetLoadError(path, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err))
	}

	if !strings.Contains(strings.ToLower(dbReader.Metadata.DatabaseType), "country") &&
		!strings.Contains(strings.ToLower(dbReader.Metadata.DatabaseType), "city") {
		dbReader.Close()

		return nil, geolib.NewDatasetLoadError(path,
			fmt.Errorf("database type %s: %w", dbReader.Metadata.DatabaseType, ErrUnsupportedFormat))
	}

	return &MMDB{dbReader: dbReader}, nil
}
