package gateway

import "strings"

// rateLimitIndicators are the substrings that mark a provider error as a
// rate limit. The list is vendor-specific and matched case-insensitively;
// no general taxonomy exists upstream, so classification stays a string
// heuristic isolated here.
var rateLimitIndicators = []string{
	"rate limit",
	"quota",
	"429",
	"too many requests",
}

// IsRateLimited reports whether err looks like a provider rate limit.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(message, indicator) {
			return true
		}
	}
	return false
}
