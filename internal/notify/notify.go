// Package notify delivers best-effort flavor messages. Senders treat every
// sink as fire-and-forget: a failed push is logged by the caller and never
// rolled back or propagated.
package notify

import (
	"fmt"

	"star-broker/internal/logger"
)

// Sink receives player-facing messages.
type Sink interface {
	Push(text, category string, priority bool) error
}

// LogSink writes messages to the console log.
type LogSink struct{}

// Push implements Sink.
func (LogSink) Push(text, category string, priority bool) error {
	if priority {
		logger.Success("NOTIFY", fmt.Sprintf("(%s!) %s", category, text))
	} else {
		logger.Info("NOTIFY", fmt.Sprintf("(%s) %s", category, text))
	}
	return nil
}

// Fanout pushes to every sink and reports the first failure. Later sinks
// still run when an earlier one fails.
type Fanout []Sink

// Push implements Sink.
func (f Fanout) Push(text, category string, priority bool) error {
	var first error
	for _, s := range f {
		if err := s.Push(text, category, priority); err != nil && first == nil {
			first = err
		}
	}
	return first
}
