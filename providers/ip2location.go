package providers

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/ip2location/ip2location-go/v9"
	"github.com/spf13/afero"
)

const ip2locationInvalidDatabase = "invalid database file"

// IP2Location is a dataset which reads IP2Location BIN files with an
// official vendor library. Unlike IP2Bin it can handle IPv6 tables
// but it gives no matched ranges.
type IP2Location struct {
	db     *ip2location.DB
	dbLock sync.Mutex
}

func (i *IP2Location) Name() string {
	return NameIP2Location
}

func (i *IP2Location) Lookup(ip net.IP) (geolib.LookupResult, error) {
	i.dbLock.Lock()
	result, err := i.db.Get_all(ip.String())
	i.dbLock.Unlock()

	if err != nil {
		return geolib.NotFound, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	if strings.Contains(strings.ToLower(result.Country_short), ip2locationInvalidDatabase) {
		return geolib.NotFound, fmt.Errorf("cannot lookup this ip address: %s", result.Country_short)
	}

	location := geolib.LocationRecord{
		CountryCode: geolib.NormalizeAlpha2Code(normalizeIP2BinValue(result.Country_short)),
	}

	if !location.Known() {
		return geolib.NotFound, nil
	}

	location.CountryName = normalizeIP2BinValue(result.Country_long)
	location.Region = normalizeIP2BinValue(result.Region)
	location.City = normalizeIP2BinValue(result.City)
	location.Latitude = float64(result.Latitude)
	location.Longitude = float64(result.Longitude)

	return geolib.Found(location, nil), nil
}

func (i *IP2Location) Close() error {
	i.dbLock.Lock()
	defer i.dbLock.Unlock()

	i.db.Close()

	return nil
}

// OpenIP2Location loads BIN file into memory and opens it with
// ip2location-go.
func OpenIP2Location(fs afero.Fs, path string) (*IP2Location, error) {
	data, err := readDatasetFile(fs, path)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	// header is validated the same way IP2Bin does it
	if _, err := parseIP2BinHeader(data); err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	db, err := ip2location.OpenDBWithReader(newBytesFile(data))
	if err != nil {
		return nil, geolib.NewDatasetLoadError(path, err)
	}

	return &IP2Location{db: db}, nil
}
