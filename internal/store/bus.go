package store

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Bus is the in-process change feed behind live subscriptions. Every
// store mutation publishes the touched collection; subscribers re-read
// their query and deliver the full current matching set downstream.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[string]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[string]func())}
}

func (b *Bus) subscribe(collection string, fn func()) func() {
	id := uuid.NewString()
	b.mu.Lock()
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[string]func())
	}
	b.subs[collection][id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m := b.subs[collection]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(b.subs, collection)
			}
		}
	}
}

func (b *Bus) publish(collection string) {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.subs[collection]))
	for _, fn := range b.subs[collection] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		deliver(fn)
	}
}

// deliver shields the mutating caller and the remaining subscribers
// from a panicking callback. The callback list is copied before the
// lock is released, so a callback can still fire after its
// unsubscribe returned; consumers that tear down shared state must
// guard their own send path.
func deliver(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[store] subscriber panicked: %v", r)
		}
	}()
	fn()
}
