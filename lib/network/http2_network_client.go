package network

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/network/httputils"
)

// HTTP2NetworkClient talks to one node through any `common.HttpDoer`, the
// HTTP2 client or the memory network.
type HTTP2NetworkClient struct {
	endpoint       *common.Endpoint
	client         common.HttpDoer
	codec          Codec
	defaultHeaders http.Header
}

var (
	defaultTimeout     = common.DefaultSendTimeout
	defaultIdleTimeout = 3 * time.Second
)

func NewHTTP2NetworkClient(endpoint *common.Endpoint, client common.HttpDoer) *HTTP2NetworkClient {
	if client == nil {
		client, _ = common.NewHTTP2Client(
			defaultTimeout,
			defaultIdleTimeout,
			false,
		)
	}

	return &HTTP2NetworkClient{
		endpoint:       endpoint,
		client:         client,
		codec:          DefaultCodec,
		defaultHeaders: http.Header{},
	}
}

func (c *HTTP2NetworkClient) Endpoint() *common.Endpoint {
	return c.endpoint
}

// SetCodec sets the codec of the outgoing messages.
func (c *HTTP2NetworkClient) SetCodec(codec Codec) {
	c.codec = codec
}

func (c *HTTP2NetworkClient) SetDefaultHeaders(headers http.Header) {
	for key, values := range headers {
		for _, v := range values {
			c.defaultHeaders.Set(key, v)
		}
	}
}

func (c *HTTP2NetworkClient) DefaultHeaders() http.Header {
	headers := http.Header{}
	for key, values := range c.defaultHeaders {
		for _, v := range values {
			headers.Set(key, v)
		}
	}

	return headers
}

func (c *HTTP2NetworkClient) resolvePath(path string) (u *url.URL) {
	u = (*url.URL)(c.endpoint).ResolveReference(&url.URL{Path: path})
	return u
}

func (c *HTTP2NetworkClient) Close() {
	if closer, ok := c.client.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (c *HTTP2NetworkClient) request(ctx context.Context, method, path string, body []byte, headers http.Header) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequest(method, c.resolvePath(path).String(), reader)
	if err != nil {
		return nil, err
	}
	request.Header = headers

	return c.client.Do(request.WithContext(ctx))
}

func (c *HTTP2NetworkClient) SendMessage(ctx context.Context, m consensus.Message) (err error) {
	headers := c.DefaultHeaders()
	headers.Set("Content-Type", c.codec.ContentType())

	var body []byte
	if body, err = c.codec.Marshal(m); err != nil {
		return
	}

	var response *http.Response
	response, err = c.request(ctx, "POST", UrlPathPrefixNode+PathMessage, body, headers)
	if err != nil {
		return
	}

	_, err = readResponse(response)

	return
}

// Status returns true when the node answers "live" and false when it
// answers "faulty"; err is set only when the node did not answer.
func (c *HTTP2NetworkClient) Status(ctx context.Context) (live bool, err error) {
	var response *http.Response
	response, err = c.request(ctx, "GET", UrlPathPrefixAPI+PathStatus, nil, c.DefaultHeaders())
	if err != nil {
		return
	}
	defer response.Body.Close()

	var body []byte
	if body, err = ioutil.ReadAll(response.Body); err != nil {
		return
	}

	switch strings.TrimSpace(string(body)) {
	case ResponseLive:
		live = true
	case ResponseFaulty:
		live = false
	default:
		err = errors.PeerUnavailable.Clone().SetData("status", response.StatusCode)
	}

	return
}

func (c *HTTP2NetworkClient) State(ctx context.Context) (state consensus.NodeState, err error) {
	headers := c.DefaultHeaders()
	headers.Set("Accept", common.ContentTypeJSON)

	var response *http.Response
	response, err = c.request(ctx, "GET", UrlPathPrefixAPI+PathState, nil, headers)
	if err != nil {
		return
	}

	var body []byte
	if body, err = readResponse(response); err != nil {
		return
	}

	err = json.Unmarshal(body, &state)

	return
}

func (c *HTTP2NetworkClient) Start(ctx context.Context) (err error) {
	var response *http.Response
	response, err = c.request(ctx, "POST", UrlPathPrefixAPI+PathStart, nil, c.DefaultHeaders())
	if err != nil {
		return
	}

	_, err = readResponse(response)

	return
}

func (c *HTTP2NetworkClient) Stop(ctx context.Context) (err error) {
	var response *http.Response
	response, err = c.request(ctx, "POST", UrlPathPrefixAPI+PathStop, nil, c.DefaultHeaders())
	if err != nil {
		return
	}

	_, err = readResponse(response)

	return
}

// readResponse returns the body of a 200 response; otherwise the problem
// document becomes the error, with the code of the original error when it
// has one.
func readResponse(response *http.Response) (body []byte, err error) {
	defer response.Body.Close()

	if body, err = ioutil.ReadAll(response.Body); err != nil {
		return
	}

	if response.StatusCode == http.StatusOK {
		return
	}

	var problem httputils.Problem
	if jsonErr := json.Unmarshal(body, &problem); jsonErr != nil || len(problem.Title) < 1 {
		err = httputils.NewStatusProblem(response.StatusCode)
		return
	}

	if problem.Code > 0 {
		e := errors.NewError(problem.Code, problem.Title)
		if data, ok := problem.Data.(map[string]interface{}); ok {
			e.Data = data
		}
		err = e
		return
	}

	err = problem

	return
}
