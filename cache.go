package replaylatest

import (
	"sort"

	"github.com/patrickmn/go-cache"
)

// latestCache keeps the most recently recorded item for every discriminant
// key. Entries never expire and keys are never removed. Each record and
// snapshot call is atomic, nothing is promised about ordering between a
// snapshot and a concurrent record.
type latestCache[T any] struct {
	key   KeyFunc[T]
	items *cache.Cache
}

// newLatestCache creates an empty cache. No janitor goroutine is started.
func newLatestCache[T any](key KeyFunc[T]) *latestCache[T] {
	return &latestCache[T]{
		key:   key,
		items: cache.New(cache.NoExpiration, 0),
	}
}

// record stores item in the slot of its key, replacing the previous one.
func (c *latestCache[T]) record(item T) error {
	key, err := c.key(item)
	if err != nil {
		return err
	}

	c.items.Set(key, item, cache.NoExpiration)
	return nil
}

// snapshot returns a copy of the cached items, ordered by key. Later records
// do not affect the returned slice.
func (c *latestCache[T]) snapshot() []T {
	items := c.items.Items()

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]T, 0, len(keys))
	for _, key := range keys {
		// Object is nil only if the key function accepted a nil item
		value, _ := items[key].Object.(T)
		values = append(values, value)
	}

	return values
}

// size returns the number of distinct keys recorded so far.
func (c *latestCache[T]) size() int {
	return c.items.ItemCount()
}
