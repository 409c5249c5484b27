// Package weblog reads, cleans and analyzes web server access logs
// exported from Splunk as CSV.
//
// Reading never fails because of a single bad row: rows with broken
// timestamps are skipped, broken status codes and byte counters are
// imputed. Both are counted in ReadStats. A file which has no client
// IP column is rejected as a whole.
//
// Records are enriched with locations by geolib.Enricher. The rest of
// the package is descriptive statistics for the analysis: grouping,
// quartiles, IQR outliers, moving averages and absolute deviations.
package weblog
