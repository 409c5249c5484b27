package geolib

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

// ParseAddress parses dotted-quad or IPv6 address string. Errors wrap
// ErrInvalidAddress.
func ParseAddress(address string) (net.IP, error) {
	ip := net.ParseIP(strings.TrimSpace(address))
	if ip == nil {
		return nil, &InvalidAddressError{Address: address}
	}

	return ip, nil
}

// IPv4ToUint32 returns a numeric form of IPv4 address. The second value
// is false if address is not IPv4 (or IPv4-mapped IPv6).
func IPv4ToUint32(ip net.IP) (uint32, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}

	return binary.BigEndian.Uint32(v4), true
}

// Lookup resolves a location of address in a given dataset.
//
// It returns NotFound in 2 cases: if there is no range which contains
// this address and if address is malformed. The latter also returns an
// error which wraps ErrInvalidAddress so callers can mark such record
// as unknown and proceed.
func Lookup(dataset Dataset, address string) (LookupResult, error) {
	ip, err := ParseAddress(address)
	if err != nil {
		return NotFound, err
	}

	result, err := dataset.Lookup(ip)
	if err != nil {
		return NotFound, fmt.Errorf("cannot lookup %s in %s: %w", address, dataset.Name(), err)
	}

	return result, nil
}
