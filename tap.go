package replaylatest

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// tapObservable records every upstream item into a cache before passing it
// on unchanged. Terminal signals pass through without touching the cache.
type tapObservable[T any] struct {
	upstream Observable[T]
	cache    *latestCache[T]
	log      logrus.FieldLogger
}

func (t *tapObservable[T]) Subscribe(observer Observer[T]) {
	t.upstream.Subscribe(&tapObserver[T]{
		downstream: observer,
		cache:      t.cache,
		log:        t.log,
	})
}

type tapObserver[T any] struct {
	downstream Observer[T]
	cache      *latestCache[T]
	log        logrus.FieldLogger

	upstream Disposable
	done     bool
}

func (t *tapObserver[T]) OnSubscribe(d Disposable) {
	t.upstream = d
	t.downstream.OnSubscribe(d)
}

func (t *tapObserver[T]) OnNext(item T) {
	if t.done {
		return
	}

	if err := t.cache.record(item); err != nil {
		t.done = true
		t.log.WithError(err).Error("cannot derive cache key, terminating stream")
		if t.upstream != nil {
			t.upstream.Dispose()
		}
		t.downstream.OnError(fmt.Errorf("cache key: %w", err))
		return
	}

	t.downstream.OnNext(item)
}

func (t *tapObserver[T]) OnError(err error) {
	if t.done {
		return
	}
	t.done = true
	t.downstream.OnError(err)
}

func (t *tapObserver[T]) OnComplete() {
	if t.done {
		return
	}
	t.done = true
	t.downstream.OnComplete()
}

// tapFlowable is the pull based counterpart of tapObservable.
type tapFlowable[T any] struct {
	upstream Flowable[T]
	cache    *latestCache[T]
	log      logrus.FieldLogger
}

func (t *tapFlowable[T]) Subscribe(subscriber Subscriber[T]) {
	t.upstream.Subscribe(&tapSubscriber[T]{
		downstream: subscriber,
		cache:      t.cache,
		log:        t.log,
	})
}

type tapSubscriber[T any] struct {
	downstream Subscriber[T]
	cache      *latestCache[T]
	log        logrus.FieldLogger

	upstream Subscription
	done     bool
}

func (t *tapSubscriber[T]) OnSubscribe(s Subscription) {
	t.upstream = s
	t.downstream.OnSubscribe(s)
}

func (t *tapSubscriber[T]) OnNext(item T) {
	if t.done {
		return
	}

	if err := t.cache.record(item); err != nil {
		t.done = true
		t.log.WithError(err).Error("cannot derive cache key, terminating stream")
		if t.upstream != nil {
			t.upstream.Cancel()
		}
		t.downstream.OnError(fmt.Errorf("cache key: %w", err))
		return
	}

	t.downstream.OnNext(item)
}

func (t *tapSubscriber[T]) OnError(err error) {
	if t.done {
		return
	}
	t.done = true
	t.downstream.OnError(err)
}

func (t *tapSubscriber[T]) OnComplete() {
	if t.done {
		return
	}
	t.done = true
	t.downstream.OnComplete()
}
