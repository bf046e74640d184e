// Package sseserver is a library for creating SSE server HTTP handlers that
// bring every newly connected client up to date with the latest event of each
// event name.
//
// This library provides a publish/subscribe interface for generating SSE
// streams. It handles keep-alive messages, allows setting client reconnect
// timeout, automatically disconnect long-lived connections. Message data are
// always marshaled to JSON.
//
// Typical usage of this package is:
//   - Create new stream object with NewLastOnly.
//   - Start a goroutine that generates events and publishes them via
//     Publish() or PublishTopic() method.
//   - Create HTTP handlers that parses Last-Event-ID header, everything else
//     is handled by the Subscribe() method.
//   - If graceful shutdown is required use DropSubscribers() and Stop()
//     methods to disconnect existing clients.
package sseserver
