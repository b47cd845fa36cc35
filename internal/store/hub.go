package store

import (
	"sync"
	"sync/atomic"
)

// hub fans change notifications out to path watchers.
//
// Writers never block on watchers: notify only marks the path pending and
// wakes the dispatch goroutine. Pending paths are coalesced, which is safe
// because every watcher re-reads a full snapshot rather than applying a diff.
type hub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]func()
	pending  map[string]struct{}
	order    []string

	wake    chan struct{}
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

func newHub() *hub {
	h := &hub{
		watchers: make(map[string]map[int]func()),
		pending:  make(map[string]struct{}),
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *hub) run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.stopCh:
			return
		case <-h.wake:
		}
		for {
			fns, ok := h.next()
			if !ok {
				break
			}
			for _, fn := range fns {
				fn()
			}
		}
	}
}

func (h *hub) next() ([]func(), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.order) == 0 {
		return nil, false
	}
	path := h.order[0]
	h.order = h.order[1:]
	delete(h.pending, path)
	fns := make([]func(), 0, len(h.watchers[path]))
	for _, fn := range h.watchers[path] {
		fns = append(fns, fn)
	}
	return fns, true
}

func (h *hub) watch(path string, fn func()) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.watchers[path] == nil {
		h.watchers[path] = make(map[int]func())
	}
	h.watchers[path][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers[path], id)
			if len(h.watchers[path]) == 0 {
				delete(h.watchers, path)
			}
			h.mu.Unlock()
		})
	}
}

func (h *hub) notify(path string) {
	if h.closed.Load() {
		return
	}
	h.mu.Lock()
	if _, ok := h.pending[path]; !ok {
		h.pending[path] = struct{}{}
		h.order = append(h.order, path)
	}
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.watchers {
		n += len(m)
	}
	return n
}

func (h *hub) close() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.stopCh)
	}
	<-h.stopped
}
