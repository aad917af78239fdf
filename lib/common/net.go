package common

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Endpoint is the address of a node. The query carries the server options,
// like `ReadTimeout` or `TLSCertFile`.
type Endpoint url.URL

func NewEndpoint(scheme, host string, port int) *Endpoint {
	return &Endpoint{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(port))}
}

// NewEndpointFromString keeps s as it is; see `ParseEndpoint`.
func NewEndpointFromString(s string) (*Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	return (*Endpoint)(u), nil
}

// ParseEndpoint normalizes the endpoint of a network node. The port defaults
// to `DefaultBasePort` and a loopback host becomes `localhost`, so one node
// has one endpoint string. Memory endpoints are only lowercased.
func ParseEndpoint(s string) (*Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if len(u.Scheme) < 1 {
		return nil, errors.Errorf("missing scheme: %q", s)
	}
	if len(u.Host) < 1 {
		return nil, errors.Errorf("missing host: %q", s)
	}

	if u.Scheme != "memory" {
		port := u.Port()
		if len(port) < 1 {
			port = strconv.Itoa(DefaultBasePort)
		}
		if p, err := strconv.ParseUint(port, 10, 16); err != nil || p < 1 {
			return nil, errors.Errorf("invalid port: %q", s)
		}

		host := u.Hostname()
		if len(host) < 1 || strings.HasPrefix(host, "127.0.") {
			host = "localhost"
		}
		u.Host = net.JoinHostPort(host, port)
	}
	u.Host = strings.ToLower(u.Host)

	return (*Endpoint)(u), nil
}

func MustParseEndpoint(s string) *Endpoint {
	e, err := ParseEndpoint(s)
	if err != nil {
		panic(err)
	}

	return e
}

// String drops the query.
func (e *Endpoint) String() string {
	u := url.URL{Scheme: e.Scheme, Host: e.Host, Path: e.Path}
	return u.String()
}

func (e *Endpoint) Query() url.Values {
	return (*url.URL)(e).Query()
}

func (e *Endpoint) Port() int {
	p, _ := strconv.Atoi((*url.URL)(e).Port())
	return p
}

func (e *Endpoint) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(e.String())), nil
}

func (e *Endpoint) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}

	p, err := ParseEndpoint(s)
	if err != nil {
		return err
	}
	*e = *p

	return nil
}
