package providers

import (
	"strconv"
	"strings"

	"github.com/9seconds/geoweblog/geolib"
	lru "github.com/hashicorp/golang-lru"
)

const locationCacheSize = 4096

// locationCache interns identical location records. Large range
// files repeat the same city thousands of times.
type locationCache struct {
	cache *lru.Cache
}

func (l *locationCache) get(record geolib.LocationRecord) *geolib.LocationRecord {
	key := strings.Join([]string{
		record.CountryCode,
		record.CountryName,
		record.Region,
		record.City,
		strconv.FormatFloat(record.Latitude, 'f', -1, 64),
		strconv.FormatFloat(record.Longitude, 'f', -1, 64),
	}, "\x00")

	if item, ok := l.cache.Get(key); ok {
		return item.(*geolib.LocationRecord)
	}

	item := &record
	l.cache.Add(key, item)

	return item
}

func newLocationCache() *locationCache {
	cache, err := lru.New(locationCacheSize)
	if err != nil {
		panic(err)
	}

	return &locationCache{cache: cache}
}
