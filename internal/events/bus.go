package events

import (
	"sync"

	"codeberg.org/mutker/devicectl/internal/errors"
)

// Bus is an in-process Source. Handlers run synchronously on the goroutine
// that calls Post.
type Bus struct {
	mu       sync.RWMutex
	known    map[Name]struct{}
	handlers map[Name]map[uint64]func()
	nextID   uint64
}

// NewBus creates a bus that accepts only the given event names.
func NewBus(names ...Name) *Bus {
	b := &Bus{
		known:    make(map[Name]struct{}, len(names)),
		handlers: make(map[Name]map[uint64]func(), len(names)),
	}
	for _, n := range names {
		b.known[n] = struct{}{}
	}
	return b
}

func (b *Bus) Subscribe(name Name, handler func()) (Registration, error) {
	errFactory := errors.New()

	if handler == nil {
		return nil, errFactory.New(ErrNilHandler)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.known[name]; !ok {
		return nil, errFactory.WithData(ErrUnknownEvent, string(name))
	}

	id := b.nextID
	b.nextID++
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[uint64]func())
	}
	b.handlers[name][id] = handler

	return &registration{bus: b, name: name, id: id}, nil
}

// Post delivers a tick to every handler registered for name at the time of
// the call.
func (b *Bus) Post(name Name) error {
	b.mu.RLock()
	if _, ok := b.known[name]; !ok {
		b.mu.RUnlock()
		return errors.New().WithData(ErrUnknownEvent, string(name))
	}
	handlers := make([]func(), 0, len(b.handlers[name]))
	for _, h := range b.handlers[name] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
	return nil
}

// Subscribers returns the number of live registrations for name.
func (b *Bus) Subscribers(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

func (b *Bus) remove(name Name, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers[name], id)
}

type registration struct {
	bus  *Bus
	name Name
	id   uint64
	once sync.Once
}

func (r *registration) Cancel() {
	r.once.Do(func() {
		r.bus.remove(r.name, r.id)
	})
}
