package sseserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds SSE stream configuration. Single Config instance can be safely
// used in multiple go routines (http request handlers) simultaneously without
// locking.
type Config struct {
	// Reconnect is a time duration before successive reconnects, it is
	// passed as a recommendation for SSE clients. Setting Reconnect to zero
	// disables sending a reconnect hint and client will use its default
	// value. Recommended value is 500 milliseconds.
	Reconnect time.Duration

	// KeepAlive sets how often SSE stream should include a dummy keep alive
	// message. Setting KeepAlive to zero disables sending keep alive
	// messages. It is recommended to keep this value lower than 60 seconds
	// if nginx proxy is used. By default nginx will timeout the request if
	// there is more than 60 seconds gap between two successive reads.
	KeepAlive time.Duration

	// Lifetime is a maximum amount of time connection is allowed to stay
	// open before a forced reconnect. Setting Lifetime to zero allows SSE
	// connections to be open indefinitely.
	Lifetime time.Duration

	// QueueLength is the number of events buffered for a single client.
	// Client that falls further behind is disconnected and has to
	// reconnect. Replayed latest events get extra room on top of it.
	// Zero or negative value means DefaultConfig.QueueLength.
	QueueLength int

	// Logger receives connection diagnostics, logrus standard logger is
	// used if nil.
	Logger logrus.FieldLogger
}

// Event holds data for single event in SSE stream.
type Event struct {
	ID    string
	Event string
	Data  interface{} // Data value will be marshaled to JSON
}

// DefaultConfig is a recommended SSE configuration.
var DefaultConfig = Config{
	Reconnect:   500 * time.Millisecond,
	KeepAlive:   30 * time.Second,
	Lifetime:    5 * time.Minute,
	QueueLength: 32,
}

var errFlusherIface = errors.New("http.ResponseWriter does not implement http.Flusher interface")

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

func (c *Config) queueLength() int {
	if c.QueueLength <= 0 {
		return DefaultConfig.QueueLength
	}
	return c.QueueLength
}

// Respond reads Events from a channel and writes them as an SSE HTTP
// response. If cfg is nil DefaultConfig is used.
//
// Stop is an optional channel for ending the response early: closing it ends
// every response sharing it, a single value sent on it ends only one. A nil
// stop channel never fires.
//
// Respond returns nil when source is closed, the stream lifetime expires, the
// client goes away or stop fires. A write failure is returned as an error.
//
// Producer writing to source must not block, Respond stops reading source as
// soon as it returns.
func Respond(w http.ResponseWriter, source <-chan *Event, cfg *Config, stop <-chan struct{}) error {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		panic(errFlusherIface)
	}

	deadline, keepalive, release := streamTimers(cfg)
	defer release()
	gone := clientGone(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	if cfg.Reconnect > 0 {
		if _, err := fmt.Fprintf(w, "retry: %d\n\n", cfg.Reconnect.Milliseconds()); err != nil {
			return fmt.Errorf("write retry hint: %w", err)
		}
	}
	flusher.Flush()

	for {
		var err error

		select {
		case <-deadline:
			return nil
		case <-stop:
			return nil
		case <-gone:
			return nil
		case <-keepalive:
			_, err = io.WriteString(w, ":keep-alive\n\n")
		case event, ok := <-source:
			if !ok {
				return nil
			}
			err = write(w, event)
		}

		if err != nil {
			return err
		}
		flusher.Flush()
	}
}

// streamTimers starts the lifetime and keep-alive timers enabled in cfg.
// Disabled timers are returned as nil channels. Release stops both.
func streamTimers(cfg *Config) (deadline, keepalive <-chan time.Time, release func()) {
	var timer *time.Timer
	var ticker *time.Ticker

	if cfg.Lifetime > 0 {
		timer = time.NewTimer(cfg.Lifetime)
		deadline = timer.C
	}
	if cfg.KeepAlive > 0 {
		ticker = time.NewTicker(cfg.KeepAlive)
		keepalive = ticker.C
	}

	return deadline, keepalive, func() {
		if timer != nil {
			timer.Stop()
		}
		if ticker != nil {
			ticker.Stop()
		}
	}
}

// clientGone returns a channel signalled when the client disconnects, nil if
// w cannot report it.
func clientGone(w http.ResponseWriter) <-chan bool {
	//nolint:staticcheck
	if notifier, ok := w.(http.CloseNotifier); ok {
		return notifier.CloseNotify()
	}
	return nil
}

// write encodes a single event as an SSE frame and writes it with one call.
// Flushing is left to the caller.
func write(w io.Writer, e *Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encode event %q: %w", e.ID, err)
	}

	var frame bytes.Buffer
	if e.ID != "" {
		frame.WriteString("id: " + e.ID + "\n")
	}
	if e.Event != "" {
		frame.WriteString("event: " + e.Event + "\n")
	}
	frame.WriteString("data: ")
	frame.Write(data)
	frame.WriteString("\n\n")

	_, err = frame.WriteTo(w)
	return err
}
