package replaylatest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Lifecycle of a replayDemandSubscriber.
const (
	stateUnrequested int32 = iota
	stateAwaitingThreshold
	stateStreaming
	stateTerminated
)

// replayFlowable attaches every subscriber to the shared upstream through a
// replayDemandSubscriber.
type replayFlowable[T any] struct {
	shared Flowable[T]
	cache  *latestCache[T]
	log    logrus.FieldLogger
}

func (r *replayFlowable[T]) Subscribe(subscriber Subscriber[T]) {
	r.shared.Subscribe(&replayDemandSubscriber[T]{
		downstream: subscriber,
		cache:      r.cache,
		log:        r.log,
	})
}

// replayDemandSubscriber holds the cache snapshot back until its subscriber
// requests at least as many items as there are cached keys. That request
// delivers the snapshot, without charging it against the requested amount,
// and is then forwarded upstream in full.
//
// A request smaller than the cache size is dropped: it neither replays nor
// reaches upstream. A subscriber that only ever requests fewer items than
// there are cached keys therefore never receives anything. A non-positive
// request cancels upstream and fails the subscriber with ErrInvalidRequest,
// after the snapshot push if one is in progress.
type replayDemandSubscriber[T any] struct {
	downstream Subscriber[T]
	cache      *latestCache[T]
	log        logrus.FieldLogger

	upstream  Subscription
	state     atomic.Int32
	cancelled atomic.Bool

	mu        sync.Mutex
	replaying bool
	finished  bool   // terminal signal delivered downstream
	deferred  int64  // demand signalled while replaying
	pending   func() // terminal signal received while replaying
}

var _ Subscription = (*replayDemandSubscriber[any])(nil)

func (r *replayDemandSubscriber[T]) OnSubscribe(s Subscription) {
	r.upstream = s
	r.state.Store(stateAwaitingThreshold)
	r.downstream.OnSubscribe(r)
}

func (r *replayDemandSubscriber[T]) OnNext(item T) {
	r.downstream.OnNext(item)
}

func (r *replayDemandSubscriber[T]) OnError(err error) {
	r.terminate(func() { r.downstream.OnError(err) })
}

func (r *replayDemandSubscriber[T]) OnComplete() {
	r.terminate(r.downstream.OnComplete)
}

// terminate delivers a terminal signal, or parks it until the snapshot push
// in progress has finished. Only the first terminal signal is delivered.
func (r *replayDemandSubscriber[T]) terminate(signal func()) {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return
	}
	if r.replaying {
		if r.pending == nil {
			r.pending = signal
		}
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.state.Store(stateTerminated)
	r.mu.Unlock()

	signal()
}

// fail cancels upstream and ends the subscriber with err. It is a no-op once
// the subscription was cancelled.
func (r *replayDemandSubscriber[T]) fail(err error) {
	if !r.cancelled.CompareAndSwap(false, true) {
		return
	}
	r.upstream.Cancel()
	r.terminate(func() { r.downstream.OnError(err) })
}

func (r *replayDemandSubscriber[T]) Request(n int64) {
	if n <= 0 {
		if r.state.Load() != stateTerminated {
			r.fail(fmt.Errorf("%w: got %d", ErrInvalidRequest, n))
		}
		return
	}

	switch r.state.Load() {
	case stateTerminated:
		return

	case stateStreaming:
		r.mu.Lock()
		if r.replaying {
			r.deferred = addDemand(r.deferred, n)
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		r.upstream.Request(n)
		return
	}

	if size := r.cache.size(); n < int64(size) {
		r.log.WithFields(logrus.Fields{
			"requested": n,
			"cached":    size,
		}).Debug("request does not cover cached items, ignoring")
		return
	}

	if !r.state.CompareAndSwap(stateAwaitingThreshold, stateStreaming) {
		// Concurrent request or terminal signal won, re-evaluate
		r.Request(n)
		return
	}

	r.replay(n)
}

// replay pushes the snapshot and then forwards n, plus any demand signalled
// during the push, upstream.
func (r *replayDemandSubscriber[T]) replay(n int64) {
	r.mu.Lock()
	if r.state.Load() == stateTerminated {
		r.mu.Unlock()
		return
	}
	r.replaying = true
	r.mu.Unlock()

	snapshot := r.cache.snapshot()
	if len(snapshot) > 0 {
		r.log.WithFields(logrus.Fields{
			"requested": n,
			"cached":    len(snapshot),
		}).Debug("replaying latest items")
	}

	for _, item := range snapshot {
		if r.cancelled.Load() {
			break
		}
		r.downstream.OnNext(item)
	}

	r.mu.Lock()
	r.replaying = false
	n = addDemand(n, r.deferred)
	r.deferred = 0
	pending := r.pending
	r.pending = nil
	if pending != nil {
		r.finished = true
		r.state.Store(stateTerminated)
	}
	r.mu.Unlock()

	if pending != nil {
		pending()
		return
	}
	if r.cancelled.Load() {
		return
	}

	r.upstream.Request(n)
}

// Cancel forwards cancellation upstream once.
func (r *replayDemandSubscriber[T]) Cancel() {
	if !r.cancelled.CompareAndSwap(false, true) {
		return
	}
	r.state.Store(stateTerminated)
	r.upstream.Cancel()
}
