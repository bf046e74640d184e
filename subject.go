package replaylatest

// Subject is a push based hot source. Items passed to Next are delivered to
// the observers subscribed at that moment; earlier items are not replayed.
//
// Next, Error and Complete must not be called concurrently with each other.
// Subscribe is safe for concurrent use.
type Subject[T any] struct {
	b *broker[T]
}

var _ Observable[any] = (*Subject[any])(nil)

// NewSubject creates a new Subject. Observers that fall more than
// cfg.QueueLength items behind are dropped with ErrSlowSubscriber.
func NewSubject[T any](cfg Config) *Subject[T] {
	return &Subject[T]{b: newBroker[T](cfg)}
}

func (s *Subject[T]) Subscribe(observer Observer[T]) {
	s.b.attachObserver(observer)
}

// Next emits item to all current observers.
func (s *Subject[T]) Next(item T) {
	s.b.publish(item)
}

// Error terminates the subject with err. Observers subscribing afterwards
// receive err right after OnSubscribe.
func (s *Subject[T]) Error(err error) {
	s.b.terminate(err)
}

// Complete terminates the subject successfully.
func (s *Subject[T]) Complete() {
	s.b.terminate(nil)
}

// HasObservers reports whether at least one observer is subscribed.
func (s *Subject[T]) HasObservers() bool {
	return s.b.count() > 0
}

// Processor is a pull based hot source. Each subscriber receives at most as
// many items as it requested; items beyond its demand are buffered for it,
// up to Config.QueueLength.
//
// Next, Error and Complete must not be called concurrently with each other.
// Subscribe is safe for concurrent use.
type Processor[T any] struct {
	b *broker[T]
}

var _ Flowable[any] = (*Processor[any])(nil)

// NewProcessor creates a new Processor.
func NewProcessor[T any](cfg Config) *Processor[T] {
	return &Processor[T]{b: newBroker[T](cfg)}
}

func (p *Processor[T]) Subscribe(subscriber Subscriber[T]) {
	p.b.attachSubscriber(subscriber)
}

// Next emits item to all current subscribers.
func (p *Processor[T]) Next(item T) {
	p.b.publish(item)
}

// Error terminates the processor with err.
func (p *Processor[T]) Error(err error) {
	p.b.terminate(err)
}

// Complete terminates the processor successfully.
func (p *Processor[T]) Complete() {
	p.b.terminate(nil)
}

// HasSubscribers reports whether at least one subscriber is subscribed.
func (p *Processor[T]) HasSubscribers() bool {
	return p.b.count() > 0
}
