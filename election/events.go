package election

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"
)

// EventKind identifies the mutation that produced an event.
type EventKind string

// Event kinds, one per committed mutation that defines it.
const (
	EventPollTitleSet     EventKind = "poll_title_set"
	EventChoicesSet       EventKind = "choices_set"
	EventWhitelistSet     EventKind = "whitelist_set"
	EventWhitelistAdded   EventKind = "whitelist_added"
	EventWhitelistRemoved EventKind = "whitelist_removed"
	EventElectionStarted  EventKind = "election_started"
	EventElectionEnded    EventKind = "election_ended"
	EventVoteCast         EventKind = "vote_cast"
)

// Event is one append-only record of a committed mutation. Seq is assigned
// in commit order, gap free from 1. Identity, ChoiceIndex, Title and Count
// are set only by the kinds that define them.
type Event struct {
	Seq         uint64          `json:"seq" bson:"_id"`
	Kind        EventKind       `json:"kind" bson:"kind"`
	Timestamp   time.Time       `json:"timestamp" bson:"timestamp"`
	Epoch       uint64          `json:"epoch" bson:"epoch"`
	Identity    *common.Address `json:"identity,omitempty" bson:"identity,omitempty"`
	ChoiceIndex *int            `json:"choiceIndex,omitempty" bson:"choiceIndex,omitempty"`
	Title       string          `json:"title,omitempty" bson:"title,omitempty"`
	Count       int             `json:"count,omitempty" bson:"count,omitempty"`
}

// EventSink receives committed events in commit order, exactly once per
// qualifying commit. Delivery downstream, including retries, is the sink's
// responsibility, never the election's.
type EventSink interface {
	Emit(e *Event) error
}

// Persister stores the election snapshot together with the events produced
// by one committed mutation.
type Persister interface {
	PersistCommit(snap *Snapshot, events []*Event) error
}

// commit assigns commit-ordered sequence numbers to the events of one
// successful mutation, hands the resulting snapshot to the persister and the
// events to the sink. Persistence or delivery failures are logged and never
// fail the already committed call. The caller must hold the write lock.
func (e *Election) commit(events ...*Event) {
	for _, ev := range events {
		e.eventSeq++
		ev.Seq = e.eventSeq
	}
	if e.persist != nil {
		if err := e.persist.PersistCommit(e.snapshot(), events); err != nil {
			log.Warnw("could not persist election state", "error", err)
		}
	}
	if e.sink == nil {
		return
	}
	for _, ev := range events {
		if err := e.sink.Emit(ev); err != nil {
			log.Warnw("could not deliver event", "seq", ev.Seq, "kind", string(ev.Kind), "error", err)
		}
	}
}
