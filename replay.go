package replaylatest

import "github.com/sirupsen/logrus"

// replayObservable attaches every observer to the shared upstream through a
// replayObserver.
type replayObservable[T any] struct {
	shared Observable[T]
	cache  *latestCache[T]
	log    logrus.FieldLogger
}

func (r *replayObservable[T]) Subscribe(observer Observer[T]) {
	r.shared.Subscribe(&replayObserver[T]{
		downstream: observer,
		cache:      r.cache,
		log:        r.log,
	})
}

// replayObserver pushes the cache snapshot to its observer right after
// OnSubscribe and relays live signals afterwards.
//
// The observer is registered with the shared upstream before the snapshot is
// read and live items are held back until OnSubscribe returns. No item is
// lost between the snapshot and live delivery, but an item recorded in that
// window can be delivered twice.
type replayObserver[T any] struct {
	downstream Observer[T]
	cache      *latestCache[T]
	log        logrus.FieldLogger
}

func (r *replayObserver[T]) OnSubscribe(d Disposable) {
	r.downstream.OnSubscribe(d)

	snapshot := r.cache.snapshot()
	if len(snapshot) == 0 {
		return
	}
	r.log.WithField("cached", len(snapshot)).Debug("replaying latest items")

	for _, item := range snapshot {
		if d.IsDisposed() {
			return
		}
		r.downstream.OnNext(item)
	}
}

func (r *replayObserver[T]) OnNext(item T) {
	r.downstream.OnNext(item)
}

func (r *replayObserver[T]) OnError(err error) {
	r.downstream.OnError(err)
}

func (r *replayObserver[T]) OnComplete() {
	r.downstream.OnComplete()
}
