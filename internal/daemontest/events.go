package daemontest

import (
	"io"
	"net/http"
	"sync"
)

// EventQueue models the daemon's single-outstanding event: wait_next returns
// the head until handled discards it. When Refill is set the queue never runs
// dry and keeps serving Refill after the queued events are consumed.
type EventQueue struct {
	mu          sync.Mutex
	events      []string
	Refill      string
	FailHandled func(call int) bool
	handled     int
}

func (q *EventQueue) Push(events ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, events...)
}

func (q *EventQueue) Install(s *Server) {
	s.HandleFunc(http.MethodPost, "/api/v1/events/wait_next", q.waitNext)
	s.HandleFunc(http.MethodPost, "/api/v1/events/handled", q.markHandled)
}

func (q *EventQueue) waitNext(w http.ResponseWriter, _ *http.Request) {
	q.mu.Lock()
	var body string
	switch {
	case len(q.events) > 0:
		body = q.events[0]
	case q.Refill != "":
		body = q.Refill
	}
	q.mu.Unlock()
	if body == "" {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"event queue closed"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func (q *EventQueue) markHandled(w http.ResponseWriter, _ *http.Request) {
	q.mu.Lock()
	q.handled++
	call := q.handled
	fail := q.FailHandled != nil && q.FailHandled(call)
	if !fail && len(q.events) > 0 {
		q.events = q.events[1:]
	}
	q.mu.Unlock()
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"ack failed"}`)
		return
	}
	_, _ = io.WriteString(w, `{}`)
}
