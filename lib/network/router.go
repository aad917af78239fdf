package network

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"boscoin.io/benor/lib/errors"
)

// Routers dispatches the requests to one router per path prefix; the
// handlers of each prefix share their middlewares.
type Routers struct {
	router    *mux.Router
	rootRoute *mux.Route
	routers   map[string]*mux.Router
}

// NewRouters answers 503 at "/" while isReady returns false.
func NewRouters(isReady func() bool) *Routers {
	baseRouter := mux.NewRouter()

	rs := &Routers{
		router: baseRouter,
		routers: map[string]*mux.Router{
			RouterNameNode:   baseRouter.PathPrefix(UrlPathPrefixNode).Subrouter(),
			RouterNameAPI:    baseRouter.PathPrefix(UrlPathPrefixAPI).Subrouter(),
			RouterNameMetric: baseRouter.PathPrefix(UrlPathPrefixMetric).Subrouter(),
			RouterNameDebug:  baseRouter.PathPrefix(UrlPathPrefixDebug).Subrouter(),
		},
	}

	rs.rootRoute = baseRouter.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !isReady() {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	})

	return rs
}

func (rs *Routers) Handler() http.Handler {
	return rs.router
}

func (rs *Routers) AddMiddleware(routerName string, mws ...mux.MiddlewareFunc) error {
	var r *mux.Router
	if len(routerName) < 1 {
		r = rs.router
	} else {
		var ok bool
		if r, ok = rs.routers[routerName]; !ok {
			return errors.NotMatchHTTPRouter.Clone().SetData("router", routerName)
		}
	}
	for _, mw := range mws {
		r.Use(mw)
	}
	return nil
}

// AddHandler routes the pattern to the router of its prefix; a pattern
// without known prefix goes to the base router.
func (rs *Routers) AddHandler(pattern string, handler http.HandlerFunc) (router *mux.Route) {
	var routerName string
	var prefix string
	switch {
	case strings.HasPrefix(pattern, UrlPathPrefixNode):
		routerName = RouterNameNode
		prefix = pattern[len(UrlPathPrefixNode):]
	case strings.HasPrefix(pattern, UrlPathPrefixAPI):
		routerName = RouterNameAPI
		prefix = pattern[len(UrlPathPrefixAPI):]
	case strings.HasPrefix(pattern, UrlPathPrefixMetric):
		routerName = RouterNameMetric
		prefix = pattern[len(UrlPathPrefixMetric):]
	case strings.HasPrefix(pattern, UrlPathPrefixDebug):
		routerName = RouterNameDebug
		prefix = pattern[len(UrlPathPrefixDebug):]
	default:
		if pattern == "" || pattern == "/" {
			return rs.rootRoute.Handler(handler)
		}
		return rs.router.HandleFunc(pattern, handler)
	}

	r := rs.routers[routerName]

	// if a pattern has a suffix *,the router sets path prefix and handler
	if strings.HasSuffix(prefix, "*") {
		pathPrefix := strings.TrimSuffix(prefix, "*")
		return r.PathPrefix(pathPrefix).Handler(handler)
	}
	return r.HandleFunc(prefix, handler)
}
