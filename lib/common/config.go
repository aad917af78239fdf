package common

import (
	"time"
)

//
// Config has the timing and network features shared by every node of a
// network. It is included in NodeRunner and the launcher.
//
type Config struct {
	// Nodes is the size of the network, Faults the number of faulty nodes
	// it tolerates.
	Nodes  int
	Faults int

	// RoundInterval is the delay between two round-advance attempts of the
	// round scheduler.
	RoundInterval time.Duration

	// SendTimeout bounds one fire-and-forget delivery to a peer.
	SendTimeout time.Duration

	// ReadyInterval is the polling interval of the remote readiness prober.
	ReadyInterval time.Duration

	BasePort int
	Host     string
	Scheme   string

	// Seed of the local coin; 0 means seeded from the clock.
	Seed int64

	// Those fields are not consensus-related
	RateLimitRuleAPI  RateLimitRule
	RateLimitRuleNode RateLimitRule

	PeerCacheSize int

	// Storage is the uri of the round journal, "memory://" or
	// "file://<dir>"; every node keeps its own database under a file
	// storage.
	Storage string
}

func NewConfig() Config {
	p := Config{}

	p.Nodes = DefaultNodes
	p.Faults = DefaultFaults
	p.RoundInterval = DefaultRoundInterval
	p.SendTimeout = DefaultSendTimeout
	p.ReadyInterval = DefaultReadyInterval
	p.BasePort = DefaultBasePort
	p.Host = DefaultHost
	p.Scheme = DefaultScheme

	p.RateLimitRuleAPI = NewRateLimitRule(RateLimitAPI)
	p.RateLimitRuleNode = NewRateLimitRule(RateLimitNode)

	p.PeerCacheSize = DefaultPeerCacheSize
	p.Storage = DefaultStorage

	return p
}

// NodeEndpoint returns the endpoint of the node, `BasePort` offset by the
// node id.
func (c Config) NodeEndpoint(id int) *Endpoint {
	return NewEndpoint(c.Scheme, c.Host, c.BasePort+id)
}

// Endpoints returns the endpoints of every node of a `n` sized network.
func (c Config) Endpoints(n int) []*Endpoint {
	endpoints := make([]*Endpoint, n)
	for i := 0; i < n; i++ {
		endpoints[i] = c.NodeEndpoint(i)
	}

	return endpoints
}
