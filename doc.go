// Package replaylatest is a library for sharing a single stream of items
// among many subscribers, where every late subscriber catches up with the
// most recent item of each kind before receiving live items.
//
// Items are bucketed by a discriminant key, by default their dynamic type.
// For a stream of A(1), B("1"), A(2) a subscriber attaching afterwards
// receives B("1") and A(2), in no particular order, followed by whatever is
// emitted next. The upstream is subscribed to once and stays connected even
// when every subscriber has left; items emitted meanwhile still update the
// cache.
//
// Two kinds of sources are supported. An Observable pushes items without
// flow control. A Flowable delivers only what its Subscriber requested; the
// cached items are revealed by the first request that covers all of them.
//
// Typical usage of this package is:
//   - Create a hot source with NewSubject or NewProcessor, or adapt an
//     existing one with ObservableFunc or FlowableFunc.
//   - Apply the operator with ReplayLatest, ReplayLatestFlowable, or New
//     with a custom KeyFunc and Config.
//   - Subscribe any number of observers to the returned source. Cancelling
//     one of them never affects the others or the upstream.
//
// The sseserver sub-package serves such a stream over server-sent events.
package replaylatest
