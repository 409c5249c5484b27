package weblog

import "strings"

const (
	StatusClassInformational = "Informational"
	StatusClassSuccess       = "Success"
	StatusClassRedirection   = "Redirection"
	StatusClassClientErrors  = "Client errors"
	StatusClassServerErrors  = "Server errors"

	// StatusClassUnknown is imputed for rows with broken status codes.
	StatusClassUnknown = "Unknown"
)

// StatusClass converts HTTP status code to its class by the first
// digit. Unknown codes produce an empty string.
func StatusClass(status string) string {
	status = strings.TrimSpace(status)

	if status == "" {
		return ""
	}

	switch status[0] {
	case '1':
		return StatusClassInformational
	case '2':
		return StatusClassSuccess
	case '3':
		return StatusClassRedirection
	case '4':
		return StatusClassClientErrors
	case '5':
		return StatusClassServerErrors
	}

	return ""
}
