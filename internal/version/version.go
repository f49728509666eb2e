// Package version exposes the build version of ticketpilot.
package version

import (
	_ "embed"
	"strings"
)

// Service is the name reported by the health endpoint and user agents.
const Service = "ticketpilot"

//go:embed VERSION
var versionContent string

// Get returns the current version, with whitespace trimmed
func Get() string {
	return strings.TrimSpace(versionContent)
}

// UserAgent returns the User-Agent sent on outbound HTTP requests.
func UserAgent() string {
	return Service + "/" + Get()
}
