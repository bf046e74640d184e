package replaylatest

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Share converts upstream into a multicast source. The upstream is
// subscribed to once, when the first observer subscribes, and all observers
// see the same sequence of items from the point they subscribe onward.
//
// The upstream connection is never torn down: items emitted while nobody is
// subscribed are lost to observers, but they still pass through upstream.
func Share[T any](upstream Observable[T], cfg Config) Observable[T] {
	return &sharedObservable[T]{
		upstream: upstream,
		b:        newBroker[T](cfg),
		log:      cfg.logger(),
	}
}

// ShareFlowable is the pull based counterpart of Share. The upstream is
// requested without limit, every subscriber gets items according to its own
// demand and falls behind by at most Config.QueueLength items.
func ShareFlowable[T any](upstream Flowable[T], cfg Config) Flowable[T] {
	return &sharedFlowable[T]{
		upstream: upstream,
		b:        newBroker[T](cfg),
		log:      cfg.logger(),
	}
}

type sharedObservable[T any] struct {
	upstream  Observable[T]
	b         *broker[T]
	log       logrus.FieldLogger
	connected atomic.Bool
}

func (s *sharedObservable[T]) Subscribe(observer Observer[T]) {
	s.b.attachObserver(observer)

	if s.connected.CompareAndSwap(false, true) {
		s.log.Debug("connecting shared upstream")
		s.upstream.Subscribe(&brokerObserver[T]{b: s.b})
	}
}

type sharedFlowable[T any] struct {
	upstream  Flowable[T]
	b         *broker[T]
	log       logrus.FieldLogger
	connected atomic.Bool
}

func (s *sharedFlowable[T]) Subscribe(subscriber Subscriber[T]) {
	s.b.attachSubscriber(subscriber)

	if s.connected.CompareAndSwap(false, true) {
		s.log.Debug("connecting shared upstream")
		s.upstream.Subscribe(&brokerSubscriber[T]{b: s.b})
	}
}

// brokerObserver feeds upstream signals into a broker. The upstream
// Disposable is not kept since the connection lives as long as the source.
type brokerObserver[T any] struct {
	b *broker[T]
}

func (o *brokerObserver[T]) OnSubscribe(Disposable) {}
func (o *brokerObserver[T]) OnNext(item T)          { o.b.publish(item) }
func (o *brokerObserver[T]) OnError(err error)      { o.b.terminate(err) }
func (o *brokerObserver[T]) OnComplete()            { o.b.terminate(nil) }

type brokerSubscriber[T any] struct {
	b *broker[T]
}

func (o *brokerSubscriber[T]) OnSubscribe(s Subscription) { s.Request(Unbounded) }
func (o *brokerSubscriber[T]) OnNext(item T)              { o.b.publish(item) }
func (o *brokerSubscriber[T]) OnError(err error)          { o.b.terminate(err) }
func (o *brokerSubscriber[T]) OnComplete()                { o.b.terminate(nil) }
