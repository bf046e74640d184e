package sseserver

import "net/http"

// Stream is an abstraction of SSE stream. Single instance of stream should be
// created for each SSE stream available in the application. Application can
// broadcast events using stream.Publish method. HTTP handlers for SSE client
// endpoints should use stream.Subscribe to tap into the event stream.
type Stream interface {
	// Publish broadcast given event to all currently connected clients
	// (subscribers) on a default topic.
	//
	// Publish on a stopped stream is ignored.
	Publish(event *Event)

	// DropSubscribers removes all currently active stream subscribers and
	// close all active HTTP responses. After call to this method all new
	// subscribers would be closed immediately.
	//
	// This function is useful in implementing graceful application
	// shutdown, this method should be called only when web server are not
	// accepting any new connections and all that is left is terminating
	// already connected ones.
	DropSubscribers()

	// Stop closes event stream. It will disconnect all connected
	// subscribers. After stream is stopped it can not started again and
	// should not be used anymore.
	//
	// Subscribe after stream was stopped returns ErrStopped.
	Stop()

	// Subscribe handles HTTP request to receive SSE stream for a default
	// topic. Caller is responsible for extracting Last event ID value from
	// the request.
	Subscribe(w http.ResponseWriter, lastEventID string) error

	// SubscribeFiltered is similar to Subscribe but each event before being
	// sent to client will be passed to given filtering function. Events
	// returned by the filtering function will be used instead.
	SubscribeFiltered(w http.ResponseWriter, lastEventID string, f FilterFn) error
}

// MultiStream is an abstraction of multiple SSE streams. Single instance of
// object could be used to transmit multiple independent SSE stream. Each stream
// is identified by a unique topic name. Application can broadcast events using
// stream.PublishTopic method. HTTP handlers for SSE client endpoints should use
// stream.SubscribeTopic to tap into the event stream.
type MultiStream interface {
	// PublishTopic broadcast given event to all currently connected clients
	// (subscribers) on a given topic.
	//
	// Publish on a stopped stream is ignored.
	PublishTopic(topic string, event *Event)

	// DropSubscribers removes all currently active stream subscribers and
	// close all active HTTP responses. See Stream.DropSubscribers.
	DropSubscribers()

	// Stop closes event stream. See Stream.Stop.
	Stop()

	// SubscribeTopic handles HTTP request to receive SSE stream for a given
	// topic. Caller is responsible for extracting Last event ID value from
	// the request.
	SubscribeTopic(w http.ResponseWriter, topic string, lastEventID string) error

	// SubscribeTopicFiltered is similar to Subscribe but each event before being
	// sent to client will be passed to given filtering function. Events
	// returned by the filtering function will be used instead.
	SubscribeTopicFiltered(w http.ResponseWriter, topic string, lastEventID string, f FilterFn) error
}

// FilterFn is a callback function used to mutate event stream for individual
// subscriptions. This function will be invoked for each event before sending it
// to the client, result of this function will be sent instead of original
// event. If this function returns `nil` event will be omitted.
//
// Original event passed to this function should NOT be mutated. The same
// event is passed to filtering functions of every subscriber, possibly from
// different go-routines. Event mutation will cause guaranteed data race
// condition. If event needs to be altered fresh copy needs to be returned.
type FilterFn func(e *Event) *Event
