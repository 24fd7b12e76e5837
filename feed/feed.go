// Package feed delivers committed election events to external consumers. The
// core emits every event exactly once, in commit order; each sink owns its
// retry and failure policy, so a misbehaving consumer never blocks a commit.
package feed

import (
	"errors"

	"github.com/vocdoni/ballotbox/election"
	"go.vocdoni.io/dvote/log"
)

var (
	_ election.EventSink = (*Multi)(nil)
	_ election.EventSink = (*LogSink)(nil)
	_ election.EventSink = (*Dispatcher)(nil)
	_ election.EventSink = (*Alerter)(nil)
)

// Multi fans every event out to a fixed set of sinks, in registration order.
type Multi struct {
	sinks []election.EventSink
}

// NewMulti creates a fanout sink over the provided sinks.
func NewMulti(sinks ...election.EventSink) *Multi {
	return &Multi{sinks: sinks}
}

// Emit delivers the event to every sink. A failing sink does not stop
// delivery to the remaining ones; all failures are joined in the returned
// error.
func (m *Multi) Emit(ev *election.Event) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes every event to the structured log. It is useful as a
// development aid and as a delivery witness when no webhook is configured.
type LogSink struct{}

// Emit implements election.EventSink.
func (LogSink) Emit(ev *election.Event) error {
	fields := []any{
		"seq", ev.Seq,
		"kind", string(ev.Kind),
		"epoch", ev.Epoch,
	}
	if ev.Identity != nil {
		fields = append(fields, "identity", ev.Identity.Hex())
	}
	if ev.ChoiceIndex != nil {
		fields = append(fields, "choice", *ev.ChoiceIndex)
	}
	log.Infow("election event", fields...)
	return nil
}
