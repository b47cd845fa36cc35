// Package binder keeps render surfaces bound to a store path. Each
// subscription receives the full ordered record list immediately and again
// after every change to the path.
package binder

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/metrics"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

const readTimeout = 5 * time.Second

// Source is the part of the content store the binder reads from.
type Source interface {
	store.Reader
	store.Notifier
}

// Binder hands out live subscriptions over a Source.
type Binder struct {
	src    Source
	logger *slog.Logger
}

// New creates a Binder reading from src.
func New(src Source, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{src: src, logger: logger}
}

// Subscription is one registered onUpdate callback.
type Subscription struct {
	b        *Binder
	path     string
	onUpdate func([]content.Record)

	mu     sync.Mutex
	active bool
	cancel func()
}

// Subscribe registers onUpdate for path and delivers the current list before
// returning. Later deliveries run on the store's dispatch goroutine; they are
// serialized per subscription and each one re-reads the whole path.
//
// onUpdate must not call Unsubscribe on its own subscription.
func (b *Binder) Subscribe(path string, onUpdate func([]content.Record)) (*Subscription, error) {
	s := &Subscription{b: b, path: path, onUpdate: onUpdate, active: true}

	// Hold the lock across registration so a change notification cannot
	// overtake the initial delivery.
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, err := b.src.Watch(path, s.deliver)
	if err != nil {
		return nil, err
	}
	s.cancel = cancel
	metrics.LiveSubscriptions.Inc()
	s.emit()
	return s, nil
}

// Path returns the subscribed path.
func (s *Subscription) Path() string {
	return s.path
}

// Unsubscribe stops delivery. Once it returns onUpdate is never invoked
// again. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	s.cancel()
	metrics.LiveSubscriptions.Dec()
}

func (s *Subscription) deliver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.emit()
}

// emit reads and delivers; caller holds s.mu.
func (s *Subscription) emit() {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	snap, err := s.b.src.Snapshot(ctx, s.path)
	if err != nil {
		s.b.logger.Warn("binder: snapshot failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		s.onUpdate([]content.Record{})
		return
	}
	s.onUpdate(ToList(snap))
}

// ToList orders a snapshot for display: descending by timestamp, ties and
// records without a timestamp keeping store insertion order. The result is a
// fresh slice owned by the caller.
func ToList(snap store.Snapshot) []content.Record {
	out := make([]content.Record, len(snap.Records))
	copy(out, snap.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp() > out[j].Timestamp()
	})
	return out
}
