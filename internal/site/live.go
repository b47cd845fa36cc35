package site

import (
	"sync"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

// Live holds the latest ordered list delivered for every bound path. It is
// the explicit state the page renderer reads; binder callbacks write it.
type Live struct {
	mu    sync.RWMutex
	lists map[string][]content.Record
}

// NewLive returns an empty cache.
func NewLive() *Live {
	return &Live{lists: make(map[string][]content.Record)}
}

// Set replaces the list for path. It has the signature of a binder callback
// once the path is bound.
func (l *Live) Set(path string, list []content.Record) {
	l.mu.Lock()
	l.lists[path] = list
	l.mu.Unlock()
}

// Setter returns a binder callback storing deliveries for path.
func (l *Live) Setter(path string) func([]content.Record) {
	return func(list []content.Record) { l.Set(path, list) }
}

// List returns the last list for path. Unbound paths yield an empty list.
func (l *Live) List(path string) []content.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	list := l.lists[path]
	if list == nil {
		return []content.Record{}
	}
	return list
}

// Single returns the singleton record delivered for path, or an empty record.
func (l *Live) Single(path string) content.Record {
	list := l.List(path)
	if len(list) == 0 {
		return content.NewRecord(path, nil)
	}
	return list[0]
}
