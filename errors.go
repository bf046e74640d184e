package replaylatest

import "errors"

// ErrNilItem is returned by TypeKey for nil items. A nil item has no dynamic
// type and therefore no cache slot.
var ErrNilItem = errors.New("nil item has no discriminant key")

// ErrSlowSubscriber is delivered to a subscriber that did not keep up with
// its source and had more than Config.QueueLength items pending. The
// subscriber is detached from the source before receiving this error.
var ErrSlowSubscriber = errors.New("subscriber is too slow")

// ErrInvalidRequest is delivered to a subscriber that requested a
// non-positive number of items.
var ErrInvalidRequest = errors.New("request amount must be positive")
