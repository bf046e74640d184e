package replaylatest

// Operator shares a single upstream subscription among any number of
// subscribers and gives every new subscriber the latest item seen for each
// discriminant key before relaying live items.
//
// Operator itself holds no stream state. Each call to Observable or Flowable
// builds an independent cache and shared upstream session, which live as
// long as the returned source is referenced.
type Operator[T any] struct {
	key KeyFunc[T]
	cfg Config
}

// New creates an operator keying items with key. A nil key defaults to
// TypeKey.
func New[T any](key KeyFunc[T], cfg Config) Operator[T] {
	if key == nil {
		key = TypeKey[T]
	}

	return Operator[T]{
		key: key,
		cfg: cfg,
	}
}

// Observable applies the operator to a push based source. Every observer
// first receives the cached items, in no particular order, and then every
// item emitted upstream while it stays subscribed.
func (op Operator[T]) Observable(upstream Observable[T]) Observable[T] {
	cache := newLatestCache(op.key)
	log := op.cfg.logger()

	tapped := &tapObservable[T]{
		upstream: upstream,
		cache:    cache,
		log:      log,
	}

	return &replayObservable[T]{
		shared: Share[T](tapped, op.cfg),
		cache:  cache,
		log:    log,
	}
}

// Flowable applies the operator to a pull based source. The cached items are
// delivered on the first request that is at least as large as the number of
// cached keys; smaller requests are ignored.
func (op Operator[T]) Flowable(upstream Flowable[T]) Flowable[T] {
	cache := newLatestCache(op.key)
	log := op.cfg.logger()

	tapped := &tapFlowable[T]{
		upstream: upstream,
		cache:    cache,
		log:      log,
	}

	return &replayFlowable[T]{
		shared: ShareFlowable[T](tapped, op.cfg),
		cache:  cache,
		log:    log,
	}
}

// ReplayLatest applies the operator to upstream, keying items by their
// dynamic type and using DefaultConfig.
func ReplayLatest[T any](upstream Observable[T]) Observable[T] {
	return New[T](nil, DefaultConfig).Observable(upstream)
}

// ReplayLatestFlowable is ReplayLatest for pull based sources.
func ReplayLatestFlowable[T any](upstream Flowable[T]) Flowable[T] {
	return New[T](nil, DefaultConfig).Flowable(upstream)
}
