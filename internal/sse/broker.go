// Package sse implements a topic-based Server-Sent Events broker for live
// collection updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is one message on a topic. Data is JSON encoded.
type Event struct {
	Topic string `json:"-"`
	Type  string `json:"type"`
	Data  any    `json:"data"`
}

type subscribeReq struct {
	topic string
	ch    chan []byte
}

type countReq struct {
	topic string
	resp  chan int
}

// Broker manages SSE client connections grouped by topic. The last event
// published on a topic is retained and replayed to every new subscriber, so
// a client connecting between changes still starts from the current state.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients and retained events). Public methods communicate with this loop
// through channels, so no mutexes are required.
type Broker struct {
	heartbeat time.Duration

	subscribeCh   chan subscribeReq
	unsubscribeCh chan subscribeReq
	publishCh     chan Event
	countReqCh    chan countReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends a comment line to every client each
// heartbeat interval to keep idle connections open through proxies.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}

	b := &Broker{
		heartbeat:     heartbeat,
		subscribeCh:   make(chan subscribeReq),
		unsubscribeCh: make(chan subscribeReq),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan countReq),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[string]map[chan []byte]struct{})
	retained := make(map[string][]byte)
	ping := []byte(": ping\n\n")

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// Client buffer full; skip to avoid blocking broker loop.
		}
	}

	for {
		select {
		case <-b.stopCh:
			for _, set := range clients {
				for ch := range set {
					close(ch)
				}
			}
			return

		case req := <-b.subscribeCh:
			if clients[req.topic] == nil {
				clients[req.topic] = make(map[chan []byte]struct{})
			}
			clients[req.topic][req.ch] = struct{}{}
			if raw, ok := retained[req.topic]; ok {
				send(req.ch, raw)
			}

		case req := <-b.unsubscribeCh:
			set := clients[req.topic]
			if _, ok := set[req.ch]; ok {
				delete(set, req.ch)
				close(req.ch)
				if len(set) == 0 {
					delete(clients, req.topic)
				}
			}

		case event := <-b.publishCh:
			raw, err := encode(event)
			if err != nil {
				continue
			}
			retained[event.Topic] = raw
			for ch := range clients[event.Topic] {
				send(ch, raw)
			}

		case <-ticker.C:
			for _, set := range clients {
				for ch := range set {
					send(ch, ping)
				}
			}

		case req := <-b.countReqCh:
			if req.topic == "" {
				n := 0
				for _, set := range clients {
					n += len(set)
				}
				req.resp <- n
				continue
			}
			req.resp <- len(clients[req.topic])
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client to topic and returns its channel. The retained
// event of the topic, if any, is the first message on the channel.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscribeReq{topic: topic, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- subscribeReq{topic: topic, ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of clients on topic, or on every topic
// when topic is empty.
func (b *Broker) ClientCount(topic string) int {
	if b.closed.Load() {
		return 0
	}

	req := countReq{topic: topic, resp: make(chan int, 1)}
	select {
	case b.countReqCh <- req:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-req.resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to every client of event.Topic and retains it.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// ServeTopic streams topic to the client until it disconnects.
func (b *Broker) ServeTopic(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(topic)
	defer b.Unsubscribe(topic, ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
