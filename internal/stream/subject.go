package stream

import "sync"

// Subject is a hold-latest multicast container. It always holds exactly one
// value, replays it to every new subscriber and then forwards each Publish
// exactly once, in order. Only the owner should call Publish.
type Subject[T any] struct {
	mu         sync.Mutex
	value      T
	observers  map[uint64]*observer[T]
	nextID     uint64
	closed     bool
	dispatcher *Dispatcher
}

type observer[T any] struct {
	fn  func(T)
	sub *Subscription
}

func (o *observer[T]) deliver(v T) {
	if o.sub.Active() {
		o.fn(v)
	}
}

func NewSubject[T any](d *Dispatcher, initial T) *Subject[T] {
	return &Subject[T]{
		value:      initial,
		observers:  make(map[uint64]*observer[T]),
		dispatcher: d,
	}
}

// Value returns the latest published value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish stores v and schedules its delivery to the current observers.
// It is a no-op once the subject is closed.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.value = v
	if len(s.observers) == 0 {
		return
	}

	targets := make([]*observer[T], 0, len(s.observers))
	for _, o := range s.observers {
		targets = append(targets, o)
	}
	s.dispatcher.Dispatch(func() {
		for _, o := range targets {
			o.deliver(v)
		}
	})
}

func (s *Subject[T]) Subscribe(fn func(T)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		sub := newSubscription(nil)
		sub.finish(false)
		return sub
	}

	id := s.nextID
	s.nextID++

	sub := newSubscription(func() { s.remove(id) })
	o := &observer[T]{fn: fn, sub: sub}
	s.observers[id] = o

	v := s.value
	s.dispatcher.Dispatch(func() { o.deliver(v) })

	return sub
}

// Close completes every subscription. Later publishes are ignored.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	observers := s.observers
	s.observers = make(map[uint64]*observer[T])
	s.mu.Unlock()

	for _, o := range observers {
		o.sub.finish(false)
	}
}

// Len returns the number of live subscriptions.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, id)
}
