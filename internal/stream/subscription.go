package stream

import (
	"sync"
	"sync/atomic"
)

// Subscription is one revocable registration on an Observable.
type Subscription struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
	onCancel  func()
}

func newSubscription(onCancel func()) *Subscription {
	return &Subscription{
		done:     make(chan struct{}),
		onCancel: onCancel,
	}
}

// Cancel revokes the registration. Other subscriptions are unaffected and
// calling Cancel more than once is safe.
func (s *Subscription) Cancel() {
	s.finish(true)
}

// Done is closed when the subscription is cancelled or its stream completes.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Active reports whether values are still delivered to this subscription.
func (s *Subscription) Active() bool {
	return !s.cancelled.Load()
}

func (s *Subscription) finish(detach bool) {
	s.once.Do(func() {
		s.cancelled.Store(true)
		if detach && s.onCancel != nil {
			s.onCancel()
		}
		close(s.done)
	})
}
