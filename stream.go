package replaylatest

import "math"

// Unbounded is the demand value that disables flow control. Demand additions
// saturate at Unbounded.
const Unbounded int64 = math.MaxInt64

// Observable is a push based source of items. Items are delivered to an
// observer as soon as they are available, without any flow control.
type Observable[T any] interface {
	// Subscribe attaches observer to the source. OnSubscribe is always the
	// first signal observer receives, followed by any number of OnNext
	// calls and at most one OnError or OnComplete.
	Subscribe(observer Observer[T])
}

// Observer receives signals from an Observable. Signals for a single
// observer are never delivered concurrently.
type Observer[T any] interface {
	// OnSubscribe hands over the handle that can be used to stop receiving
	// items.
	OnSubscribe(d Disposable)

	// OnNext delivers a single item.
	OnNext(item T)

	// OnError terminates the sequence with an error.
	OnError(err error)

	// OnComplete terminates the sequence successfully.
	OnComplete()
}

// Disposable is a handle for stopping an Observer subscription.
type Disposable interface {
	// Dispose stops delivery to the observer. Calling Dispose more than once
	// is a no-op.
	Dispose()

	// IsDisposed reports whether Dispose was called.
	IsDisposed() bool
}

// Flowable is a pull based source of items. A subscriber receives no more
// items than it has requested through its Subscription.
type Flowable[T any] interface {
	// Subscribe attaches subscriber to the source. OnSubscribe is always the
	// first signal subscriber receives.
	Subscribe(subscriber Subscriber[T])
}

// Subscriber receives signals from a Flowable. Signals for a single
// subscriber are never delivered concurrently.
type Subscriber[T any] interface {
	// OnSubscribe hands over the subscription used to request items.
	// Nothing but terminal signals is delivered until the subscriber
	// requests.
	OnSubscribe(s Subscription)

	// OnNext delivers a single requested item.
	OnNext(item T)

	// OnError terminates the sequence with an error.
	OnError(err error)

	// OnComplete terminates the sequence successfully.
	OnComplete()
}

// Subscription is the control channel from a Subscriber to its Flowable.
type Subscription interface {
	// Request signals demand for n more items. n must be positive, a
	// non-positive request cancels the subscription and fails the
	// subscriber with ErrInvalidRequest.
	Request(n int64)

	// Cancel stops delivery to the subscriber. It is idempotent.
	Cancel()
}

// receiver is the signal set shared by Observer and Subscriber.
type receiver[T any] interface {
	OnNext(item T)
	OnError(err error)
	OnComplete()
}

// ObservableFunc adapts a plain function to the Observable interface.
type ObservableFunc[T any] func(observer Observer[T])

func (f ObservableFunc[T]) Subscribe(observer Observer[T]) { f(observer) }

// FlowableFunc adapts a plain function to the Flowable interface.
type FlowableFunc[T any] func(subscriber Subscriber[T])

func (f FlowableFunc[T]) Subscribe(subscriber Subscriber[T]) { f(subscriber) }

// ObserverFuncs builds an Observer out of optional callbacks. Nil callbacks
// are ignored. The Disposable received in OnSubscribe is kept and can be
// released with Dispose.
type ObserverFuncs[T any] struct {
	Next     func(item T)
	Error    func(err error)
	Complete func()

	d Disposable
}

func (o *ObserverFuncs[T]) OnSubscribe(d Disposable) { o.d = d }

func (o *ObserverFuncs[T]) OnNext(item T) {
	if o.Next != nil {
		o.Next(item)
	}
}

func (o *ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o *ObserverFuncs[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Dispose releases the subscription handed over in OnSubscribe. It is a
// no-op before OnSubscribe.
func (o *ObserverFuncs[T]) Dispose() {
	if o.d != nil {
		o.d.Dispose()
	}
}

// addDemand adds n to current, saturating at Unbounded.
func addDemand(current, n int64) int64 {
	if current == Unbounded || n >= Unbounded-current {
		return Unbounded
	}
	return current + n
}
