package sseserver

import (
	"errors"
	"net/http"
	"sync"

	"github.com/advbet/replaylatest"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultEventName is the SSE event type clients assume for events published
// without a name. Unnamed events share the cache slot of this name.
const DefaultEventName = "message"

// ErrStopped is returned when subscribing to a stopped stream.
var ErrStopped = errors.New("stream is stopped")

// LastOnlyStream resends the latest event of every event name to newly
// connected clients, followed by live events. Each topic is an independent
// stream with its own set of latest events.
type LastOnlyStream struct {
	cfg          Config
	log          logrus.FieldLogger
	responseStop chan struct{}
	dropOnce     sync.Once

	mu      sync.Mutex
	stopped bool
	topics  map[string]*topic
}

// topic serialises publishing, subscribing and stopping of a single
// replay-latest stream.
type topic struct {
	mu     sync.Mutex
	events *replaylatest.Subject[*Event]
	latest replaylatest.Observable[*Event]
	lastID string
	names  map[string]struct{} // event names held by latest
}

var (
	_ Stream      = (*LastOnlyStream)(nil)
	_ MultiStream = (*LastOnlyStream)(nil)
)

// NewLastOnly creates a new sse stream that resends only the last seen event
// of each event name to all newly connected clients. If client already have
// seen the latest event of a topic nothing is repeated.
func NewLastOnly(cfg Config) *LastOnlyStream {
	return &LastOnlyStream{
		cfg:          cfg,
		log:          cfg.logger(),
		responseStop: make(chan struct{}),
		topics:       make(map[string]*topic),
	}
}

// eventName keys events by their SSE event type.
func eventName(e *Event) (string, error) {
	if e == nil {
		return "", replaylatest.ErrNilItem
	}
	if e.Event == "" {
		return DefaultEventName, nil
	}
	return e.Event, nil
}

// topicFor returns a topic by name, creating it on first use. It returns nil
// once the stream is stopped.
func (s *LastOnlyStream) topicFor(name string) *topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}

	t, ok := s.topics[name]
	if !ok {
		rcfg := replaylatest.Config{
			QueueLength: s.cfg.queueLength(),
			Logger:      s.log.WithField("topic", name),
		}
		events := replaylatest.NewSubject[*Event](rcfg)
		t = &topic{
			events: events,
			latest: replaylatest.New[*Event](eventName, rcfg).Observable(events),
			names:  make(map[string]struct{}),
		}
		s.topics[name] = t
	}

	return t
}

func (s *LastOnlyStream) Publish(event *Event) {
	s.PublishTopic("", event)
}

func (s *LastOnlyStream) PublishTopic(topic string, event *Event) {
	if event == nil {
		s.log.WithField("topic", topic).Warn("ignoring nil event")
		return
	}

	t := s.topicFor(topic)
	if t == nil {
		s.log.WithField("topic", topic).Debug("publishing on a stopped stream")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	name, _ := eventName(event)
	t.names[name] = struct{}{}
	t.lastID = event.ID
	t.events.Next(event)
}

func (s *LastOnlyStream) Subscribe(w http.ResponseWriter, lastEventID string) error {
	return s.SubscribeTopicFiltered(w, "", lastEventID, nil)
}

func (s *LastOnlyStream) SubscribeFiltered(w http.ResponseWriter, lastEventID string, f FilterFn) error {
	return s.SubscribeTopicFiltered(w, "", lastEventID, f)
}

func (s *LastOnlyStream) SubscribeTopic(w http.ResponseWriter, topic string, lastEventID string) error {
	return s.SubscribeTopicFiltered(w, topic, lastEventID, nil)
}

func (s *LastOnlyStream) SubscribeTopicFiltered(w http.ResponseWriter, topic string, lastEventID string, f FilterFn) error {
	t := s.topicFor(topic)
	if t == nil {
		return ErrStopped
	}

	log := s.log.WithFields(logrus.Fields{
		"topic":  topic,
		"client": uuid.NewString(),
	})
	// No events are published while the client subscribes, everything
	// delivered meanwhile is the replayed snapshot
	t.mu.Lock()
	c := newClient(s.cfg.queueLength(), len(t.names), f, log)
	c.skip = lastEventID != "" && lastEventID == t.lastID
	t.latest.Subscribe(c)
	c.skip = false
	t.mu.Unlock()
	defer c.close()

	log.WithField("last_event_id", lastEventID).Debug("client connected")

	if err := Respond(w, c.events, &s.cfg, s.responseStop); err != nil {
		log.WithError(err).Debug("client response failed")
		return err
	}
	log.Debug("client disconnected")

	return c.error()
}

func (s *LastOnlyStream) DropSubscribers() {
	s.dropOnce.Do(func() {
		close(s.responseStop)
	})
}

// Stop completes every topic, which ends all active responses.
func (s *LastOnlyStream) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	topics := s.topics
	s.topics = nil
	s.mu.Unlock()

	for _, t := range topics {
		t.mu.Lock()
		t.events.Complete()
		t.mu.Unlock()
	}
}
