// This package provides a set of structs and functions which are used
// to geolocate given IP addresses against static range-indexed
// databases.
//
// geolib is a core of the geoweblog project. A Dataset is a read-only
// table which maps disjoint numeric IP intervals to a location
// metadata. Datasets are loaded once and never mutated; all lookups are
// pure reads so it is safe to share a single dataset between many
// goroutines.
//
// Lookup converts an address string into a numeric form and asks a
// dataset for a range which contains it. Malformed addresses never
// panic: they produce a not found result and an error which wraps
// ErrInvalidAddress.
//
// Enricher is a main entity of the geolib. It consolidates a chain of
// datasets, runs batch lookups in a worker pool and tracks usage
// statistics. NewHTTPHandler exposes it as a JSON API.
package geolib
