package network

import (
	"net/http"
	"net/http/httptest"
	"sync"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/errors"
)

const MemoryScheme = "memory"

var memoryNetworks = struct {
	sync.RWMutex
	m map[ /* endpoint */ string]*MemoryNetwork
}{m: map[string]*MemoryNetwork{}}

func getMemoryNetwork(endpoint string) (*MemoryNetwork, bool) {
	memoryNetworks.RLock()
	defer memoryNetworks.RUnlock()

	n, found := memoryNetworks.m[endpoint]
	return n, found
}

// MemoryNetwork serves the handlers inside the process. The networks of
// one process find each other by endpoint once they are started; a stopped
// network is unreachable.
type MemoryNetwork struct {
	sync.RWMutex
	*Routers

	endpoint    *common.Endpoint
	ready       bool
	listenHooks []func()
	stopOnce    sync.Once
	stop        chan struct{}
	handler     http.Handler
	log         logging.Logger
}

func NewMemoryNetwork(nodeName string, endpoint *common.Endpoint) *MemoryNetwork {
	n := &MemoryNetwork{
		endpoint: &common.Endpoint{Scheme: MemoryScheme, Host: endpoint.Host},
		stop:     make(chan struct{}),
		log:      log.New(logging.Ctx{"module": "memory", "node": nodeName}),
	}
	n.Routers = NewRouters(n.isReady)
	n.handler = HTTP2Log15Handler{log: n.log, handler: n.Handler()}

	return n
}

// CreateNewMemoryEndpoint makes an endpoint no other memory network uses.
func CreateNewMemoryEndpoint() *common.Endpoint {
	return &common.Endpoint{Scheme: MemoryScheme, Host: common.GenerateUUID()}
}

func (n *MemoryNetwork) Endpoint() *common.Endpoint {
	return n.endpoint
}

func (n *MemoryNetwork) GetClient(endpoint *common.Endpoint) NetworkClient {
	e := &common.Endpoint{Scheme: MemoryScheme, Host: endpoint.Host}

	client := NewHTTP2NetworkClient(e, MemoryDoer{})
	headers := http.Header{}
	headers.Set("User-Agent", "benor-memory")
	client.SetDefaultHeaders(headers)

	return client
}

func (n *MemoryNetwork) AddListenHook(f func()) {
	n.Lock()
	defer n.Unlock()

	n.listenHooks = append(n.listenHooks, f)
}

// Start registers the network and blocks until `Stop`.
func (n *MemoryNetwork) Start() error {
	key := n.endpoint.String()

	memoryNetworks.Lock()
	if _, found := memoryNetworks.m[key]; found {
		memoryNetworks.Unlock()
		return errors.HTTPServerNotListening.Clone().SetData("endpoint", key).SetData("error", "address already in use")
	}
	memoryNetworks.m[key] = n
	memoryNetworks.Unlock()

	defer func() {
		memoryNetworks.Lock()
		delete(memoryNetworks.m, key)
		memoryNetworks.Unlock()
	}()

	n.RLock()
	hooks := n.listenHooks
	n.RUnlock()

	for _, f := range hooks {
		f()
	}

	<-n.stop

	return nil
}

func (n *MemoryNetwork) Stop() {
	n.stopOnce.Do(func() {
		close(n.stop)
	})
}

func (n *MemoryNetwork) Ready() error {
	n.Lock()
	defer n.Unlock()

	n.ready = true

	return nil
}

func (n *MemoryNetwork) isReady() bool {
	n.RLock()
	defer n.RUnlock()

	return n.ready
}

func (n *MemoryNetwork) isStopped() bool {
	select {
	case <-n.stop:
		return true
	default:
		return false
	}
}

func (n *MemoryNetwork) IsReady() bool {
	_, found := getMemoryNetwork(n.endpoint.String())
	return found && !n.isStopped()
}

// MemoryDoer delivers the requests to the started memory networks.
type MemoryDoer struct{}

func (MemoryDoer) Do(r *http.Request) (*http.Response, error) {
	endpoint := (&common.Endpoint{Scheme: r.URL.Scheme, Host: r.URL.Host}).String()

	n, found := getMemoryNetwork(endpoint)
	if !found || n.isStopped() {
		return nil, errors.PeerUnavailable.Clone().SetData("endpoint", endpoint)
	}

	if len(r.RemoteAddr) < 1 {
		r.RemoteAddr = "memory"
	}
	if r.Body == nil {
		r.Body = http.NoBody
	}
	if len(r.RequestURI) < 1 {
		r.RequestURI = r.URL.RequestURI()
	}

	done := make(chan *http.Response, 1)
	go func() {
		recorder := httptest.NewRecorder()
		n.handler.ServeHTTP(recorder, r)
		done <- recorder.Result()
	}()

	select {
	case <-r.Context().Done():
		return nil, r.Context().Err()
	case response := <-done:
		return response, nil
	}
}
