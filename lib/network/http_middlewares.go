package network

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/store/memory"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/metrics"
	"boscoin.io/benor/lib/network/httputils"
)

func RecoverMiddleware(printStack bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", r)
					}
					httputils.WriteJSON(w, http.StatusInternalServerError, err)
					log.Error("recover an panic", "err", err)
					if printStack {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// RateLimitMiddleware limits the requests by the ip address of the remote.
// A rate with zero limit does not limit.
func RateLimitMiddleware(logger logging.Logger, rule common.RateLimitRule) mux.MiddlewareFunc {
	store := memory.NewStore()

	defaultLimiter := limiter.New(store, rule.Default)
	limiters := map[string]*limiter.Limiter{}
	for ip, rate := range rule.ByIPAddress {
		limiters[ip] = limiter.New(store, rate)
	}

	return func(next http.Handler) http.Handler {
		if rule.IsUnlimited() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)

			l, found := limiters[ip]
			if !found {
				l = defaultLimiter
			}
			if l.Rate.Limit < 1 {
				next.ServeHTTP(w, r)
				return
			}

			context, err := l.Get(r.Context(), ip)
			if err != nil {
				logger.Error("failed to check rate limit", "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderRateLimitLimit, strconv.FormatInt(context.Limit, 10))
			w.Header().Set(HeaderRateLimitRemaining, strconv.FormatInt(context.Remaining, 10))
			w.Header().Set(HeaderRateLimitReset, strconv.FormatInt(context.Reset, 10))

			if context.Reached {
				logger.Debug("rate limit reached", "ip", ip, "uri", r.URL.String())
				httputils.WriteJSON(
					w,
					http.StatusTooManyRequests,
					httputils.NewStatusProblem(http.StatusTooManyRequests),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware observes the requests by their route template.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		writer := newStatusWriter(w)
		next.ServeHTTP(writer, r)

		metrics.API.Observe(endpoint, r.Method, writer.Status(), begin)
	})
}
