// Geoweblog enriches web server access logs with geolocation data and
// analyzes them.
//
// A tool is organized into 4 logical parts:
//
// Geolib
//
// geolib is a core package which resolves IPv4 addresses to locations
// by binary search over sorted address ranges. It has a set of
// datasets, an Enricher which uses them with a worker pool and an HTTP
// API.
//
// Providers
//
// This package loads datasets from files: IP2Location BIN databases,
// MaxMind MMDB and CSV range lists. Files can be compressed with gzip
// or zstd.
//
// Weblog
//
// weblog reads access logs exported from Splunk, enriches them and
// computes descriptive statistics: top countries and cities, time
// series, moving averages and outliers.
//
// Export
//
// export downloads results of Splunk saved searches.
//
// A main package wires everything into CLI with lookup, enrich,
// report, serve and download commands.
package main
