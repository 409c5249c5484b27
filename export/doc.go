// Package export downloads weblog data from Splunk.
//
// Splunk exposes results of saved searches with its REST API on a
// management port. Download streams results of a job into a file so
// weblog package can read them later. HTTP access goes through a
// client with rate limiting and a circuit breaker.
package export
