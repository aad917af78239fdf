package httputils

import (
	"net/http"
	"strings"

	"boscoin.io/benor/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	return r.Header.Get("Accept") == "text/event-stream"
}

var (
	ErrorsToStatus = map[uint]int{
		100: http.StatusBadRequest,
		101: http.StatusBadRequest,
		102: http.StatusBadRequest,
		103: http.StatusBadRequest,
		104: http.StatusBadRequest,
		105: http.StatusBadRequest,
		106: http.StatusUnsupportedMediaType,
		107: http.StatusBadRequest,
		108: http.StatusBadRequest,
		109: http.StatusBadRequest,
		110: http.StatusBadRequest,
		111: http.StatusBadRequest,
		112: http.StatusBadRequest,
		113: http.StatusBadRequest,
		114: http.StatusGatewayTimeout,
		150: http.StatusNotFound,
		151: http.StatusConflict,
		160: http.StatusNotFound,
		163: http.StatusServiceUnavailable,
		170: http.StatusBadRequest,
	}
)

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, found := ErrorsToStatus[e.Code]; found {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ContentType strips the parameters, like charset, from the request
// content type.
func ContentType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}

	return strings.ToLower(strings.TrimSpace(ct))
}
