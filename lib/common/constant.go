package common

import (
	"time"
)

const (
	DefaultNodes         int = 1
	DefaultFaults        int = 0
	DefaultBasePort      int = 3000
	DefaultHost              = "localhost"
	DefaultScheme            = "http"
	DefaultRoundInterval     = 50 * time.Millisecond
	DefaultSendTimeout       = 3 * time.Second
	DefaultReadyInterval     = 100 * time.Millisecond
	DefaultPeerCacheSize     = 256
	DefaultStorage           = "memory://"
)

const (
	ContentTypeJSON        = "application/json"
	ContentTypeHALJSON     = "application/hal+json"
	ContentTypeProblemJSON = "application/problem+json"
	ContentTypeMsgpack     = "application/msgpack"
	ContentTypeText        = "text/plain; charset=utf-8"
)

var (
	// RateLimitAPI is applied to the control surface by ip address.
	RateLimitAPI = NewRate(time.Second, 100)

	// RateLimitNode is applied to peer messages; a round of N nodes sends
	// N messages to every peer, so it is kept high.
	RateLimitNode = NewRate(time.Second, 10000)
)
