package common

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

type HttpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTP2Client sends each request once; it never retries and never follows
// redirects.
type HTTP2Client struct {
	client    *http.Client
	transport *http.Transport
}

func NewHTTP2Client(timeout, idleTimeout time.Duration, keepAlive bool) (*HTTP2Client, error) {
	dialer := &net.Dialer{
		Timeout:   3 * time.Second,
		KeepAlive: time.Second,
		DualStack: true,
	}

	transport := &http.Transport{
		// the nodes of a test network use self-signed certificates
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		DialContext:         dialer.DialContext,
		IdleConnTimeout:     idleTimeout,
		DisableKeepAlives:   !keepAlive,
		MaxIdleConnsPerHost: 16,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, err
	}

	return &HTTP2Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		transport: transport,
	}, nil
}

func (c *HTTP2Client) Close() {
	c.transport.CloseIdleConnections()
}

func (c *HTTP2Client) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
