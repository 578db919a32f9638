// Package filter classifies visitor identifiers as real or synthetic.
// Synthetic identifiers (test runs, admin sessions, local development)
// must never pollute visit records or the aggregate count.
package filter

import (
	"strings"
)

// syntheticMarkers are matched as case-insensitive substrings. The
// breadth is intentional: "dev" matches "developer-123". Listings and
// cleanups rely on the same substrings, so narrowing them here would
// desynchronize the write and read paths.
var syntheticMarkers = []string{
	"localhost",
	"127.0.0.1",
	"test",
	"admin",
	"dev",
	"local",
}

// IsSynthetic reports whether visitorID should be excluded from
// accounting. exemptID is the operator's own device identifier and is
// compared exactly; pass "" when none is configured.
func IsSynthetic(visitorID, exemptID string) bool {
	if exemptID != "" && visitorID == exemptID {
		return true
	}

	lowered := strings.ToLower(visitorID)
	for _, marker := range syntheticMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	return false
}

// Markers returns the synthetic substring deny-list, for backends that
// push the exclusion into a query (ILIKE patterns a remote store can run).
func Markers() []string {
	out := make([]string, len(syntheticMarkers))
	copy(out, syntheticMarkers)
	return out
}
