package common

import (
	"time"

	"github.com/ulule/limiter"
)

type RateLimitRule struct {
	Default     limiter.Rate
	ByIPAddress map[string]limiter.Rate
}

func NewRate(period time.Duration, limit int64) limiter.Rate {
	return limiter.Rate{Period: period, Limit: limit}
}

func NewRateLimitRule(rate limiter.Rate) RateLimitRule {
	return RateLimitRule{Default: rate, ByIPAddress: map[string]limiter.Rate{}}
}

// Rate returns the rate for the ip address, falling back to the default.
func (r RateLimitRule) Rate(ip string) limiter.Rate {
	if rate, found := r.ByIPAddress[ip]; found {
		return rate
	}

	return r.Default
}

func (r RateLimitRule) IsUnlimited() bool {
	return r.Default.Limit < 1 && len(r.ByIPAddress) < 1
}
