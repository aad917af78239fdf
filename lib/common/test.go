// Provide test utilities for the common package
package common

import (
	"time"
)

// Initialize a new config object for unittests
func NewTestConfig() Config {
	p := NewConfig()

	p.RoundInterval = 5 * time.Millisecond
	p.SendTimeout = 500 * time.Millisecond
	p.ReadyInterval = 10 * time.Millisecond
	p.Seed = 1

	p.RateLimitRuleAPI = NewRateLimitRule(NewRate(time.Second, 0))
	p.RateLimitRuleNode = NewRateLimitRule(NewRate(time.Second, 0))

	return p
}
