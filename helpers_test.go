package replaylatest

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// sealAB is a closed family of item types used throughout the tests. A and B
// land in different cache slots with the default TypeKey.
type sealAB interface {
	isSealAB()
}

type A struct{ N int }

type B struct{ S string }

func (A) isSealAB() {}
func (B) isSealAB() {}

// testObserver records every signal it receives.
type testObserver[T any] struct {
	mu         sync.Mutex
	d          Disposable
	items      []T
	err        error
	completed  bool
	subscribed bool
}

func (o *testObserver[T]) OnSubscribe(d Disposable) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.d = d
	o.subscribed = true
}

func (o *testObserver[T]) OnNext(item T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, item)
}

func (o *testObserver[T]) OnError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *testObserver[T]) OnComplete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = true
}

func (o *testObserver[T]) values() []T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]T(nil), o.items...)
}

func (o *testObserver[T]) error() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *testObserver[T]) isCompleted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.completed
}

func (o *testObserver[T]) dispose() {
	o.mu.Lock()
	d := o.d
	o.mu.Unlock()
	d.Dispose()
}

// testSubscriber records every signal it receives and requests initial items
// from inside OnSubscribe, none if initial is zero.
type testSubscriber[T any] struct {
	initial int64

	mu          sync.Mutex
	s           Subscription
	items       []T
	err         error
	completions int
}

func newTestSubscriber[T any](initial int64) *testSubscriber[T] {
	return &testSubscriber[T]{initial: initial}
}

func (ts *testSubscriber[T]) OnSubscribe(s Subscription) {
	ts.mu.Lock()
	ts.s = s
	ts.mu.Unlock()

	if ts.initial > 0 {
		s.Request(ts.initial)
	}
}

func (ts *testSubscriber[T]) OnNext(item T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.items = append(ts.items, item)
}

func (ts *testSubscriber[T]) OnError(err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.err = err
}

func (ts *testSubscriber[T]) OnComplete() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.completions++
}

func (ts *testSubscriber[T]) request(n int64) {
	ts.mu.Lock()
	s := ts.s
	ts.mu.Unlock()
	s.Request(n)
}

func (ts *testSubscriber[T]) cancel() {
	ts.mu.Lock()
	s := ts.s
	ts.mu.Unlock()
	s.Cancel()
}

func (ts *testSubscriber[T]) values() []T {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]T(nil), ts.items...)
}

func (ts *testSubscriber[T]) error() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.err
}

func (ts *testSubscriber[T]) isCompleted() bool {
	return ts.completedTimes() > 0
}

func (ts *testSubscriber[T]) completedTimes() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.completions
}

// recordingSubscription stands in for the shared upstream of a single
// subscriber and records the demand forwarded to it.
type recordingSubscription struct {
	mu       sync.Mutex
	requests []int64
	cancels  int
}

func (s *recordingSubscription) Request(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, n)
}

func (s *recordingSubscription) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *recordingSubscription) requested() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.requests...)
}

func (s *recordingSubscription) cancelled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// quietConfig is a test configuration that keeps log output out of test runs.
func quietConfig() Config {
	log := logrus.New()
	log.Out = io.Discard
	return Config{
		QueueLength: 32,
		Logger:      log,
	}
}
