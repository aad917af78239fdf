package network

import (
	"strings"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/errors"
)

// NewNetwork creates the network of the endpoint scheme, "memory", "http"
// or "https".
func NewNetwork(nodeName string, endpoint *common.Endpoint) (Network, error) {
	switch strings.ToLower(endpoint.Scheme) {
	case MemoryScheme:
		return NewMemoryNetwork(nodeName, endpoint), nil
	case "http", "https":
		config, err := NewHTTP2NetworkConfigFromEndpoint(nodeName, endpoint)
		if err != nil {
			return nil, err
		}
		return NewHTTP2Network(config), nil
	default:
		return nil, errors.EndpointNotFound.Clone().SetData("endpoint", endpoint.String())
	}
}
