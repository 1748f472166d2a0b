package cache

import "time"

// Keys written by the application. Rate limit counters (rl:<resource>:<id>)
// live in the middleware package.
const (
	// ReportPeriodsKey holds the approved-visit period summaries.
	ReportPeriodsKey = "reports:periods"
	// TokenBlacklistPrefix is followed by a revoked JWT jti.
	TokenBlacklistPrefix = "blacklist:"
)

const (
	ReportPeriodsTTL = 5 * time.Minute
)

// TokenBlacklistKey is the revocation key for a token id.
func TokenBlacklistKey(jti string) string {
	return TokenBlacklistPrefix + jti
}
