package sseserver

import (
	"sync"

	"github.com/advbet/replaylatest"
	"github.com/sirupsen/logrus"
)

// client bridges a replay-latest stream into the event channel read by
// Respond. Sends never block: a client whose channel is full is detached and
// its channel closed, ending the HTTP response.
type client struct {
	events   chan *Event
	filter   FilterFn
	log      logrus.FieldLogger
	queue    int
	replayed int

	// skip drops events while set, used to hide replayed events from a
	// client that has already seen them
	skip bool

	mu     sync.Mutex
	d      replaylatest.Disposable
	err    error
	closed bool
}

var _ replaylatest.Observer[*Event] = (*client)(nil)

// newClient creates a client buffering up to queue live events on top of the
// replayed latest events.
func newClient(queue, replayed int, f FilterFn, log logrus.FieldLogger) *client {
	return &client{
		events:   make(chan *Event, queue+replayed),
		filter:   f,
		log:      log,
		queue:    queue,
		replayed: replayed,
	}
}

func (c *client) OnSubscribe(d replaylatest.Disposable) {
	c.mu.Lock()
	c.d = d
	c.mu.Unlock()
}

func (c *client) OnNext(e *Event) {
	if c.skip {
		return
	}
	if c.filter != nil {
		if e = c.filter(e); e == nil {
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.events <- e:
	default:
		c.log.WithFields(logrus.Fields{
			"queue_length": c.queue,
			"replayed":     c.replayed,
		}).Warn("client too slow, disconnecting")
		c.err = replaylatest.ErrSlowSubscriber
		c.closeLocked()
		if c.d != nil {
			c.d.Dispose()
		}
	}
}

func (c *client) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.err = err
	c.closeLocked()
}

func (c *client) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// close detaches the client from its stream.
func (c *client) close() {
	c.mu.Lock()
	d := c.d
	c.mu.Unlock()

	if d != nil {
		d.Dispose()
	}
}

// error returns the reason the stream ended the client, nil if it ended
// normally or has not ended yet.
func (c *client) error() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
