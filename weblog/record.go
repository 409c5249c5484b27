package weblog

import (
	"time"

	"github.com/9seconds/geoweblog/geolib"
)

// Record is a single cleaned request of the access log.
type Record struct {
	Time        time.Time             `json:"time"`
	ClientIP    string                `json:"clientip"`
	Method      string                `json:"method"`
	URIPath     string                `json:"uri_path"`
	Status      string                `json:"status"`
	StatusClass string                `json:"status_class"`
	Bytes       int64                 `json:"bytes"`
	UserAgent   string                `json:"useragent"`
	Referer     string                `json:"referer"`
	Location    geolib.LocationRecord `json:"location"`

	// Located is false if address was malformed or was not found in
	// any dataset.
	Located bool `json:"located"`
}

// KeyFunc extracts a grouping key from a record.
type KeyFunc func(*Record) string

func ByCountry(r *Record) string {
	return r.Location.CountryCode
}

func ByCity(r *Record) string {
	return r.Location.City
}

func ByStatusClass(r *Record) string {
	return r.StatusClass
}

func ByStatus(r *Record) string {
	return r.Status
}

func ByMethod(r *Record) string {
	return r.Method
}

func ByURIPath(r *Record) string {
	return r.URIPath
}

func ByClientIP(r *Record) string {
	return r.ClientIP
}

// FilterCountry returns records located in a given country.
func FilterCountry(records []Record, countryCode string) []Record {
	countryCode = geolib.NormalizeAlpha2Code(countryCode)
	rv := []Record{}

	for i := range records {
		if records[i].Located && records[i].Location.CountryCode == countryCode {
			rv = append(rv, records[i])
		}
	}

	return rv
}
