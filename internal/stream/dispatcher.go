package stream

import "sync"

// Dispatcher runs submitted callbacks one at a time, in submission order, on
// a single goroutine. It is the delivery context for every stream that shares
// it.
type Dispatcher struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go d.run()

	return d
}

// Dispatch queues fn and returns immediately. It reports false once the
// dispatcher is stopped.
func (d *Dispatcher) Dispatch(fn func()) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}

	return true
}

// Stop drops pending callbacks and waits for the one in flight, if any.
// Nothing runs after Stop returns. It must not be called from a callback.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.queue = nil
		d.mu.Unlock()
		close(d.done)
	})
	<-d.exited
}

func (d *Dispatcher) run() {
	defer close(d.exited)

	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		for {
			fn, ok := d.next()
			if !ok {
				break
			}
			fn()
		}

		if d.isStopped() {
			return
		}
	}
}

func (d *Dispatcher) next() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.queue) == 0 {
		return nil, false
	}
	fn := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]

	return fn, true
}

func (d *Dispatcher) isStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}
