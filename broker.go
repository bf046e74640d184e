package replaylatest

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// broker is an implementation of single pub-sub communications channel. Every
// subscribed sink observes the same sequence of items from the moment it
// subscribes. Publishing and termination must be serialised by the caller,
// subscribing and unsubscribing are safe for concurrent use.
type broker[T any] struct {
	log   logrus.FieldLogger
	limit int

	mu    sync.Mutex
	sinks map[*sink[T]]struct{}
	done  bool
	err   error
}

// newBroker creates a new instance of broker.
func newBroker[T any](cfg Config) *broker[T] {
	return &broker[T]{
		log:   cfg.logger(),
		limit: cfg.QueueLength,
		sinks: make(map[*sink[T]]struct{}),
	}
}

// subscribe registers target and returns its sink. The caller must hand the
// sink to the target's OnSubscribe and call sink.start afterwards. If the
// broker already terminated, the sink is not registered and carries the
// terminal signal instead.
func (b *broker[T]) subscribe(target receiver[T], requested int64) *sink[T] {
	s := newSink(target, requested, b.limit, b.unsubscribe)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		s.done = true
		s.err = b.err
		return s
	}
	b.sinks[s] = struct{}{}

	return s
}

// attachObserver subscribes a push observer, one with unbounded demand.
func (b *broker[T]) attachObserver(o Observer[T]) {
	s := b.subscribe(o, Unbounded)
	o.OnSubscribe(s)
	s.start()
}

// attachSubscriber subscribes a pull subscriber, one that starts without
// demand.
func (b *broker[T]) attachSubscriber(sub Subscriber[T]) {
	s := b.subscribe(sub, 0)
	sub.OnSubscribe(s)
	s.start()
}

// unsubscribe removes a sink, safe for concurrent access.
func (b *broker[T]) unsubscribe(s *sink[T]) {
	b.mu.Lock()
	delete(b.sinks, s)
	b.mu.Unlock()
}

// publish broadcasts item to all of the subscribers.
func (b *broker[T]) publish(item T) {
	sinks := b.snapshot()
	if sinks == nil {
		return
	}

	for _, s := range sinks {
		if !s.push(item) {
			// Subscriber is too slow, it was failed by its sink and
			// has to resubscribe
			b.unsubscribe(s)
			b.log.WithField("queue_length", b.limit).Warn("dropped slow subscriber")
		}
	}
}

// terminate delivers the terminal signal to all of the subscribers and
// remembers it for later ones. Nil err means completion.
func (b *broker[T]) terminate(err error) {
	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		return
	}
	b.done = true
	b.err = err
	sinks := make([]*sink[T], 0, len(b.sinks))
	for s := range b.sinks {
		sinks = append(sinks, s)
	}
	b.sinks = make(map[*sink[T]]struct{})
	b.mu.Unlock()

	for _, s := range sinks {
		s.terminate(err)
	}
}

// snapshot copies the current subscriber set so it is not locked while
// subscribers are notified. It returns nil after termination.
func (b *broker[T]) snapshot() []*sink[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return nil
	}

	sinks := make([]*sink[T], 0, len(b.sinks))
	for s := range b.sinks {
		sinks = append(sinks, s)
	}

	return sinks
}

// count returns the number of registered subscribers.
func (b *broker[T]) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.sinks)
}
