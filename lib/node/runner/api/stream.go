package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/common/observer"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/network/httputils"
)

// EventKindState is the kind of the first line of an event stream, the
// state of the node when the stream starts.
const EventKindState = "state"

// DefaultEventBuffer is the number of rendered events kept for a slow
// stream; further events are dropped until it drains.
var DefaultEventBuffer = 64

// GetEventsHandler streams the events of the node as json lines. The
// `kind` query selects the kinds, comma separated; by default every kind.
func (api NetworkHandlerAPI) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	var kinds []string
	if q := r.URL.Query().Get("kind"); len(q) > 0 {
		for _, kind := range strings.Split(q, ",") {
			if _, found := common.InStringArray(observer.EventKinds, kind); !found {
				httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("kind", kind))
				return
			}
			kinds = append(kinds, kind)
		}
	}

	es, err := NewEventStream(w, r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	// subscribe before the first line, so no transition falls in between
	wait := es.Observe(observer.NodeObserver, observer.Events(api.id, kinds...)...)
	es.Render(observer.NodeEvent{
		Node:  api.id,
		Kind:  EventKindState,
		State: api.consensus.State(),
		Time:  common.NowISO8601(),
	})
	wait()
}

// EventStream writes json lines to a chunked response.
type EventStream struct {
	request *http.Request
	writer  http.ResponseWriter
	flusher http.Flusher

	headerOnce sync.Once
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewEventStream(w http.ResponseWriter, r *http.Request) (*EventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.StreamNotSupported
	}

	return &EventStream{
		request: r,
		writer:  w,
		flusher: flusher,
		stop:    make(chan struct{}),
	}, nil
}

func renderLine(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(httputils.NewErrorProblem(err, httputils.StatusCode(err)))
	}

	return b
}

// Render writes v as one line and flushes it.
func (s *EventStream) Render(v interface{}) {
	s.write(renderLine(v))
}

func (s *EventStream) write(line []byte) {
	s.headerOnce.Do(func() {
		s.writer.Header().Set("Content-Type", common.ContentTypeJSON)
	})

	s.writer.Write(append(line, '\n'))
	s.flusher.Flush()
}

// Observe subscribes to the events and returns the function which writes
// them until the request is done or Stop is called.
//
// `observable.Trigger` calls the observers synchronously, so a rendered
// event is queued without blocking the node; it is dropped when the queue
// is full.
func (s *EventStream) Observe(ob *observable.Observable, events ...string) func() {
	event := strings.Join(events, " ")
	lines := make(chan []byte, DefaultEventBuffer)

	onFunc := func(args ...interface{}) {
		if len(args) < 1 || args[0] == nil {
			return
		}

		select {
		case <-s.stop:
		case lines <- renderLine(args[0]):
		default:
			log.Warn("event stream is full; event dropped", "events", event)
		}
	}
	ob.On(event, onFunc)

	return func() {
		defer ob.Off(event, onFunc)

		for {
			select {
			case line := <-lines:
				s.write(line)
			case <-s.request.Context().Done():
				s.Stop()
				return
			case <-s.stop:
				return
			}
		}
	}
}

func (s *EventStream) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}
