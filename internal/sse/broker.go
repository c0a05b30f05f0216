// Package sse streams tag discoveries to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event types.
const (
	EventTagAdded    = "tag.added"
	EventTagsChanged = "tags.changed"
)

const (
	clientBuffer     = 64
	defaultKeepAlive = 15 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// TagAdded is the payload of a tag.added event.
type TagAdded struct {
	Tag  string `json:"tag"`
	Path string `json:"path"`
}

// hub is the broker state. Only the loop goroutine touches it.
type hub struct {
	clients     map[chan []byte]struct{}
	seq         uint64
	lastChanged time.Time
}

// broadcast frames one event with the next id and offers it to every client.
// Clients whose buffer is full miss the event.
func (h *hub) broadcast(kind string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	h.seq++
	msg := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", h.seq, kind, payload)
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Broker fans tag events out to SSE clients.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	cmds      chan func(*hub)
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithKeepAlive sets how often idle streams get a comment line so proxies
// keep them open. Zero or less disables it.
func WithKeepAlive(d time.Duration) BrokerOption {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

// NewBroker creates a broker that emits tags.changed at most once per
// throttle interval.
func NewBroker(throttle time.Duration, opts ...BrokerOption) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:  throttle,
		keepAlive: defaultKeepAlive,
		cmds:      make(chan func(*hub), 256),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.done:
			for ch := range h.clients {
				close(ch)
			}
			return
		case cmd := <-b.cmds:
			cmd(h)
		}
	}
}

// do queues cmd for the loop. It reports false once the broker is closed.
func (b *Broker) do(cmd func(*hub)) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.cmds <- cmd:
		return true
	case <-b.stopped:
		return false
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed when the
// client unsubscribes or the broker closes.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	added := make(chan struct{})
	ok := b.do(func(h *hub) {
		h.clients[ch] = struct{}{}
		close(added)
	})
	if !ok {
		close(ch)
		return ch
	}
	select {
	case <-added:
	case <-b.stopped:
		select {
		case <-added:
			// Registered before the loop exited, which closed ch.
		default:
			close(ch)
		}
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(h *hub) {
		h.broadcast(event.Type, event.Data)
	})
}

// PublishTag announces a newly seen tag, followed by tags.changed unless one
// went out within the throttle interval. It matches watch.TagCallback.
func (b *Broker) PublishTag(tag, path string) {
	b.do(func(h *hub) {
		h.broadcast(EventTagAdded, TagAdded{Tag: tag, Path: path})
		if now := time.Now(); now.Sub(h.lastChanged) >= b.throttle {
			h.lastChanged = now
			h.broadcast(EventTagsChanged, struct{}{})
		}
	})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
