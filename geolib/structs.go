package geolib

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"

	cidrman "github.com/EvilSuperstars/go-cidrman"
)

// LocationRecord is a geographic metadata associated with an IP range.
type LocationRecord struct {
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Known reports if a record carries at least a country code.
func (l LocationRecord) Known() bool {
	return l.CountryCode != ""
}

// IPRange is a closed interval [Start, End] of numeric IPv4 values.
type IPRange struct {
	Start uint32
	End   uint32
}

// Contains checks if a given numeric address belongs to the range.
func (r IPRange) Contains(value uint32) bool {
	return r.Start <= value && value <= r.End
}

// StartIP returns a first address of the range.
func (r IPRange) StartIP() net.IP {
	return Uint32ToIPv4(r.Start)
}

// EndIP returns a last address of the range.
func (r IPRange) EndIP() net.IP {
	return Uint32ToIPv4(r.End)
}

func (r IPRange) String() string {
	return r.StartIP().String() + "-" + r.EndIP().String()
}

// CIDRs returns a minimal set of CIDR blocks which cover this range.
func (r IPRange) CIDRs() (cidrs []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("cannot split range %s into subnets: %v", r, rec)
		}
	}()

	cidrs, err = cidrman.IPRangeToCIDRs(r.StartIP().String(), r.EndIP().String())
	if err != nil {
		return nil, fmt.Errorf("cannot split range %s into subnets: %w", r, err)
	}

	return cidrs, nil
}

// MarshalJSON is to conform json.Marshaller interface.
func (r IPRange) MarshalJSON() ([]byte, error) {
	value := struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: r.StartIP().String(),
		End:   r.EndIP().String(),
	}

	return json.Marshal(&value)
}

// LookupResult is either a found location or a 'not found' value. Use
// OK to distinguish them.
//
// Range is set only if a dataset can tell which IPv4 interval has
// matched.
type LookupResult struct {
	Location LocationRecord
	Range    *IPRange

	found bool
}

// OK reports if lookup has found a location.
func (l LookupResult) OK() bool {
	return l.found
}

// NotFound is returned by datasets if address is outside of all known
// ranges.
var NotFound = LookupResult{}

// Found builds a successful lookup result. Range is optional.
func Found(location LocationRecord, ipRange *IPRange) LookupResult {
	return LookupResult{
		Location: location,
		Range:    ipRange,
		found:    true,
	}
}

// Uint32ToIPv4 converts numeric value into 4-byte net.IP.
func Uint32ToIPv4(value uint32) net.IP {
	ip := make(net.IP, net.IPv4len)

	binary.BigEndian.PutUint32(ip, value)

	return ip
}
