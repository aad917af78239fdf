package network

import (
	"net/http"
	"time"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/common"
)

// HTTP2ErrorLog15Writer sends the errors of `http.Server` to log15.
type HTTP2ErrorLog15Writer struct {
	l logging.Logger
}

func (w HTTP2ErrorLog15Writer) Write(b []byte) (int, error) {
	w.l.Error("http server error", "error", string(b))
	return len(b), nil
}

// statusWriter remembers the status and the size of the response. It
// keeps `http.Flusher` so the event stream works behind it.
type statusWriter struct {
	http.ResponseWriter

	status int
	size   int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w}
}

func (s *statusWriter) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}

	n, err := s.ResponseWriter.Write(b)
	s.size += n

	return n, err
}

func (s *statusWriter) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status is 200 when the handler wrote nothing.
func (s *statusWriter) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}

	return s.status
}

const HeaderRequestID = "X-Request-Id"

// HTTP2Log15Handler logs every request and its response under one request
// id, which is sent back in `HeaderRequestID`.
type HTTP2Log15Handler struct {
	log     logging.Logger
	handler http.Handler
}

func (l HTTP2Log15Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	uid := common.GenerateUUID()
	log := l.log.New("id", uid)

	uri := r.RequestURI
	if len(uri) < 1 {
		uri = r.URL.RequestURI()
	}

	log.Debug(
		"request",
		"method", r.Method,
		"uri", uri,
		"remote", r.RemoteAddr,
		"content-type", r.Header.Get("Content-Type"),
		"content-length", r.ContentLength,
		"user-agent", r.UserAgent(),
	)

	w.Header().Set(HeaderRequestID, uid)

	writer := newStatusWriter(w)
	l.handler.ServeHTTP(writer, r)

	log.Debug("response", "status", writer.Status(), "size", writer.size, "elapsed", time.Since(begin))
}
