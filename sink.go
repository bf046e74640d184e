package replaylatest

import (
	"fmt"
	"sync"
)

// sink is a single subscriber's delivery lane. It serialises signals to the
// subscriber, keeps track of outstanding demand and buffers items that cannot
// be delivered yet. A sink is both the Disposable handed to observers and the
// Subscription handed to subscribers.
//
// The lock is never held while the subscriber is called, so the subscriber
// may call Request, Cancel or Dispose from inside OnNext.
type sink[T any] struct {
	target receiver[T]
	limit  int
	detach func(*sink[T])

	mu        sync.Mutex
	queue     []T
	requested int64
	emitting  bool
	done      bool // terminal signal accepted
	err       error
	delivered bool // terminal signal delivered
	cancelled bool
}

var (
	_ Subscription = (*sink[any])(nil)
	_ Disposable   = (*sink[any])(nil)
)

// newSink creates a sink that starts in the emitting state, so nothing is
// delivered before start is called. This keeps OnSubscribe the first signal
// a subscriber sees even if items are published while it runs.
func newSink[T any](target receiver[T], requested int64, limit int, detach func(*sink[T])) *sink[T] {
	return &sink[T]{
		target:    target,
		limit:     limit,
		detach:    detach,
		requested: requested,
		emitting:  true,
	}
}

// start releases delivery after OnSubscribe returned.
func (s *sink[T]) start() {
	s.mu.Lock()
	s.emitting = false
	s.mu.Unlock()
	s.drain()
}

func (s *sink[T]) Request(n int64) {
	if n <= 0 {
		s.fail(fmt.Errorf("%w: got %d", ErrInvalidRequest, n))
		return
	}

	s.mu.Lock()
	s.requested = addDemand(s.requested, n)
	s.mu.Unlock()
	s.drain()
}

func (s *sink[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.queue = nil
	s.mu.Unlock()

	s.detach(s)
}

func (s *sink[T]) Dispose() {
	s.Cancel()
}

func (s *sink[T]) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelled || s.delivered
}

// push queues item for delivery. It returns false if the queue limit was
// reached; in that case the queue is discarded and the subscriber is failed
// with ErrSlowSubscriber.
func (s *sink[T]) push(item T) bool {
	s.mu.Lock()
	if s.cancelled || s.done {
		s.mu.Unlock()
		return true
	}

	if s.limit > 0 && len(s.queue) >= s.limit {
		s.queue = nil
		s.done = true
		s.err = ErrSlowSubscriber
		s.mu.Unlock()
		s.drain()
		return false
	}

	s.queue = append(s.queue, item)
	s.mu.Unlock()
	s.drain()
	return true
}

// terminate accepts a terminal signal, nil err meaning completion. It is
// delivered after every queued item.
func (s *sink[T]) terminate(err error) {
	s.mu.Lock()
	if s.cancelled || s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.err = err
	s.mu.Unlock()

	s.drain()
}

// fail detaches the sink and delivers err ahead of any queued items.
func (s *sink[T]) fail(err error) {
	s.mu.Lock()
	if s.cancelled || s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.err = err
	s.queue = nil
	s.mu.Unlock()

	s.detach(s)
	s.drain()
}

// drain delivers queued items while there is demand, followed by the
// terminal signal once the queue is empty. Only one goroutine drains at a
// time; others leave their work in the queue for the active one.
func (s *sink[T]) drain() {
	s.mu.Lock()
	if s.emitting {
		s.mu.Unlock()
		return
	}
	s.emitting = true

	for !s.cancelled {
		if len(s.queue) > 0 && s.requested > 0 {
			item := s.queue[0]
			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			if s.requested != Unbounded {
				s.requested--
			}

			s.mu.Unlock()
			s.target.OnNext(item)
			s.mu.Lock()
			continue
		}

		if len(s.queue) == 0 && s.done && !s.delivered {
			s.delivered = true
			err := s.err

			s.mu.Unlock()
			if err != nil {
				s.target.OnError(err)
			} else {
				s.target.OnComplete()
			}
			s.mu.Lock()
		}
		break
	}

	s.emitting = false
	s.mu.Unlock()
}

// pending returns the number of queued items.
func (s *sink[T]) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}
