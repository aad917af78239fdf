package network

import (
	"strings"
	"time"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/errors"
)

type HTTP2NetworkConfig struct {
	NodeName string
	Endpoint *common.Endpoint
	Addr     string

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	TLSCertFile,
	TLSKeyFile string
}

func parseTimeoutQuery(endpoint *common.Endpoint, key string) (d time.Duration, err error) {
	v := common.GetUrlQuery(endpoint.Query(), key, "0s")
	if d, err = time.ParseDuration(v); err != nil || d < 0 {
		err = errors.BadRequestParameter.Clone().SetData(key, v)
		return
	}

	return
}

// NewHTTP2NetworkConfigFromEndpoint reads the server options from the
// query of the endpoint, like
// "https://localhost:3000?ReadTimeout=3s&TLSCertFile=a.cert&TLSKeyFile=a.key".
func NewHTTP2NetworkConfigFromEndpoint(nodeName string, endpoint *common.Endpoint) (config *HTTP2NetworkConfig, err error) {
	config = &HTTP2NetworkConfig{
		NodeName: nodeName,
		Endpoint: endpoint,
		Addr:     endpoint.Host,
	}

	if config.ReadTimeout, err = parseTimeoutQuery(endpoint, "ReadTimeout"); err != nil {
		return nil, err
	}
	if config.ReadHeaderTimeout, err = parseTimeoutQuery(endpoint, "ReadHeaderTimeout"); err != nil {
		return nil, err
	}
	if config.WriteTimeout, err = parseTimeoutQuery(endpoint, "WriteTimeout"); err != nil {
		return nil, err
	}
	if config.IdleTimeout, err = parseTimeoutQuery(endpoint, "IdleTimeout"); err != nil {
		return nil, err
	}

	query := endpoint.Query()
	config.TLSCertFile = query.Get("TLSCertFile")
	config.TLSKeyFile = query.Get("TLSKeyFile")

	if strings.ToLower(endpoint.Scheme) == "https" && !config.IsHTTPS() {
		return nil, errors.BadRequestParameter.Clone().SetData("error", "HTTPS needs `TLSCertFile` and `TLSKeyFile`")
	}

	return
}

func (config HTTP2NetworkConfig) IsHTTPS() bool {
	return len(config.TLSCertFile) > 0 && len(config.TLSKeyFile) > 0
}

func (config HTTP2NetworkConfig) String() string {
	return string(common.MustMarshalJSON(config))
}
