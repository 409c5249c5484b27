// Package providers has loaders of geolocation datasets.
//
// Each loader reads a whole file into memory (with afero, so tests and
// callers can use any filesystem) and returns an immutable
// geolib.Dataset. Any problem with a file is reported as
// geolib.DatasetLoadError.
//
// Supported formats:
//
//	ip2bin       IP2Location BIN files, native reader with binary search
//	ip2location  IP2Location BIN files, read by ip2location-go
//	mmdb         MaxMind DB files (GeoLite2, DB-IP lite)
//	csv          CSV files with sorted IP ranges
package providers
