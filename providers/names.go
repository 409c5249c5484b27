package providers

const (
	// Identifier for a native reader of IP2Location BIN files.
	NameIP2Bin = "ip2bin"

	// Identifier for IP2Location BIN files read by ip2location-go.
	NameIP2Location = "ip2location"

	// Identifier for MaxMind DB files (MaxMind GeoLite2, DB-IP lite).
	NameMMDB = "mmdb"

	// Identifier for CSV files with IP ranges.
	NameCSV = "csv"
)

// Kinds returns a list of supported dataset kinds.
func Kinds() []string {
	return []string{NameIP2Bin, NameIP2Location, NameMMDB, NameCSV}
}
