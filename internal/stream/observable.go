// Package stream provides the multicast primitives behind device state
// streams: a serial Dispatcher, the hold-latest Subject and single-shot Just.
package stream

import "context"

// Observable is the read side of a stream. Observers are always invoked on
// the stream's dispatcher goroutine.
type Observable[T any] interface {
	Subscribe(fn func(T)) *Subscription
}

// Just is a single-shot stream: every subscriber receives the value once and
// the subscription then completes.
type Just[T any] struct {
	value      T
	dispatcher *Dispatcher
}

func NewJust[T any](d *Dispatcher, value T) *Just[T] {
	return &Just[T]{value: value, dispatcher: d}
}

func (j *Just[T]) Subscribe(fn func(T)) *Subscription {
	sub := newSubscription(nil)
	v := j.value

	ok := j.dispatcher.Dispatch(func() {
		if sub.Active() {
			fn(v)
		}
		sub.finish(false)
	})
	if !ok {
		sub.finish(false)
	}

	return sub
}

type mapped[T, U any] struct {
	src Observable[T]
	fn  func(T) U
}

// Map derives a stream whose values are fn applied to every value of src.
func Map[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return &mapped[T, U]{src: src, fn: fn}
}

func (m *mapped[T, U]) Subscribe(fn func(U)) *Subscription {
	return m.src.Subscribe(func(v T) {
		fn(m.fn(v))
	})
}

// First waits for the first value of src.
func First[T any](ctx context.Context, src Observable[T]) (T, error) {
	values := make(chan T, 1)
	sub := src.Subscribe(func(v T) {
		select {
		case values <- v:
		default:
		}
	})
	defer sub.Cancel()

	select {
	case v := <-values:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
