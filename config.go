package replaylatest

import "github.com/sirupsen/logrus"

// Config holds stream runtime configuration. Single Config instance can be
// safely shared by multiple sources and operator applications.
type Config struct {
	// QueueLength is the maximum number of items buffered for a single
	// subscriber that has not yet consumed or requested them. A subscriber
	// whose buffer is full is dropped with ErrSlowSubscriber. Zero or a
	// negative value disables the limit.
	QueueLength int

	// Logger receives diagnostic records. If nil, the logrus standard
	// logger is used.
	Logger logrus.FieldLogger
}

// DefaultConfig is a recommended stream configuration.
var DefaultConfig = Config{
	QueueLength: 1024,
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
