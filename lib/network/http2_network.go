package network

import (
	goLog "log"
	"net"
	"net/http"
	"sync"
	"time"

	logging "github.com/inconshreveable/log15"
	"golang.org/x/net/http2"

	"boscoin.io/benor/lib/common"
)

type HTTP2Network struct {
	sync.RWMutex
	*Routers

	server *http.Server

	ready       bool
	listener    net.Listener
	listenHooks []func()

	config *HTTP2NetworkConfig
	log    logging.Logger
}

func NewHTTP2Network(config *HTTP2NetworkConfig) (h2n *HTTP2Network) {
	httpLog := log.New(logging.Ctx{"module": "http", "node": config.NodeName})
	errorLog := goLog.New(HTTP2ErrorLog15Writer{httpLog}, "", 0)

	server := &http.Server{
		Addr:              config.Addr,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		ErrorLog:          errorLog,
	}
	server.SetKeepAlivesEnabled(true)

	http2.ConfigureServer(
		server,
		&http2.Server{
			IdleTimeout: config.IdleTimeout,
		},
	)

	h2n = &HTTP2Network{
		server: server,
		config: config,
		log:    httpLog,
	}
	h2n.Routers = NewRouters(h2n.isReady)
	h2n.server.Handler = HTTP2Log15Handler{log: h2n.log, handler: h2n.Handler()}

	return
}

// GetClient creates new keep-alive HTTP2 client
func (t *HTTP2Network) GetClient(endpoint *common.Endpoint) NetworkClient {
	rawClient, _ := common.NewHTTP2Client(defaultTimeout, defaultIdleTimeout, true)

	client := NewHTTP2NetworkClient(endpoint, rawClient)

	headers := http.Header{}
	headers.Set("User-Agent", "benor-"+t.config.NodeName)
	client.SetDefaultHeaders(headers)

	return client
}

func (t *HTTP2Network) Endpoint() *common.Endpoint {
	return t.config.Endpoint
}

func (t *HTTP2Network) Config() *HTTP2NetworkConfig {
	return t.config
}

func (t *HTTP2Network) AddListenHook(f func()) {
	t.Lock()
	defer t.Unlock()

	t.listenHooks = append(t.listenHooks, f)
}

func (t *HTTP2Network) Ready() error {
	t.Lock()
	defer t.Unlock()

	t.ready = true

	return nil
}

func (t *HTTP2Network) isReady() bool {
	t.RLock()
	defer t.RUnlock()

	return t.ready
}

// IsReady checks the network answers to the status request.
func (t *HTTP2Network) IsReady() bool {
	client, err := common.NewHTTP2Client(500*time.Millisecond, 500*time.Millisecond, false)
	if err != nil {
		return false
	}
	defer client.Close()

	ctx, cancel := newTimeoutContext(500 * time.Millisecond)
	defer cancel()

	_, err = NewHTTP2NetworkClient(t.Endpoint(), client).Status(ctx)

	return err == nil
}

// Listener returns the bound listener, nil before `Start`.
func (t *HTTP2Network) Listener() net.Listener {
	t.RLock()
	defer t.RUnlock()

	return t.listener
}

// Start binds the address, runs the listen hooks and serves until `Stop`.
func (t *HTTP2Network) Start() (err error) {
	var listener net.Listener
	if listener, err = net.Listen("tcp", t.config.Addr); err != nil {
		t.log.Error("failed to listen", "addr", t.config.Addr, "error", err)
		return
	}

	t.Lock()
	t.listener = listener
	hooks := t.listenHooks
	t.Unlock()

	t.log.Debug("listening", "addr", listener.Addr().String(), "https", t.config.IsHTTPS())

	for _, f := range hooks {
		f()
	}

	if t.config.IsHTTPS() {
		err = t.server.ServeTLS(listener, t.config.TLSCertFile, t.config.TLSKeyFile)
	} else {
		err = t.server.Serve(listener)
	}

	if err == http.ErrServerClosed {
		err = nil
	}

	return
}

func (t *HTTP2Network) Stop() {
	t.server.Close()
}
