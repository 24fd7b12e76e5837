package db

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/ballotbox/election"
)

var (
	testAdmin = common.Address{0x01}
	testVoter = common.Address{0x02}
)

// testSnapshot builds a snapshot like the election produces after a few
// commits.
func testSnapshot(epoch, eventSeq uint64) *election.Snapshot {
	startedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &election.Snapshot{
		Admin:     testAdmin,
		Title:     "Board vote",
		Choices:   []election.Choice{{Label: "A", Votes: 1}, {Label: "B"}},
		Epoch:     epoch,
		Active:    true,
		StartedAt: startedAt,
		Whitelist: []election.WhitelistEntry{
			{Identity: testVoter, Active: true},
			{Identity: common.Address{0x03}, Active: false},
		},
		Voters: []election.VoterEntry{
			{Identity: testVoter, LastVotedEpoch: epoch, ChoiceIndex: 0, VotedAt: startedAt},
		},
		EventSeq: eventSeq,
	}
}

func testEvents(seqs ...uint64) []*election.Event {
	choice := 0
	events := make([]*election.Event, len(seqs))
	for i, seq := range seqs {
		identity := testVoter
		events[i] = &election.Event{
			Seq:         seq,
			Kind:        election.EventVoteCast,
			Timestamp:   time.Date(2024, 5, 1, 10, 0, int(seq), 0, time.UTC),
			Epoch:       1,
			Identity:    &identity,
			ChoiceIndex: &choice,
		}
	}
	return events
}

// runStoreTests exercises the Store contract shared by every backend.
func runStoreTests(c *qt.C, store Store) {
	// empty store
	_, err := store.Snapshot()
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	seq, err := store.LastEventSeq()
	c.Assert(err, qt.IsNil)
	c.Assert(seq, qt.Equals, uint64(0))
	events, err := store.Events(0, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 0)

	// first commit
	c.Assert(store.PersistCommit(testSnapshot(1, 3), testEvents(1, 2, 3)), qt.IsNil)
	snap, err := store.Snapshot()
	c.Assert(err, qt.IsNil)
	c.Assert(snap.Admin, qt.Equals, testAdmin)
	c.Assert(snap.Epoch, qt.Equals, uint64(1))
	c.Assert(snap.EventSeq, qt.Equals, uint64(3))
	c.Assert(snap.Title, qt.Equals, "Board vote")
	c.Assert(snap.Active, qt.IsTrue)
	c.Assert(snap.Choices, qt.HasLen, 2)
	c.Assert(snap.Choices[0].Votes, qt.Equals, uint64(1))
	c.Assert(snap.Whitelist, qt.HasLen, 2)
	c.Assert(snap.Whitelist[0].Identity, qt.Equals, testVoter)
	c.Assert(snap.Whitelist[1].Active, qt.IsFalse)
	c.Assert(snap.Voters, qt.HasLen, 1)
	c.Assert(snap.Voters[0].LastVotedEpoch, qt.Equals, uint64(1))

	seq, err = store.LastEventSeq()
	c.Assert(err, qt.IsNil)
	c.Assert(seq, qt.Equals, uint64(3))

	// a later commit replaces the snapshot and appends to the journal
	c.Assert(store.PersistCommit(testSnapshot(2, 5), testEvents(4, 5)), qt.IsNil)
	snap, err = store.Snapshot()
	c.Assert(err, qt.IsNil)
	c.Assert(snap.Epoch, qt.Equals, uint64(2))

	events, err = store.Events(0, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 5)
	for i, ev := range events {
		c.Assert(ev.Seq, qt.Equals, uint64(i+1), qt.Commentf("event %d", i))
		c.Assert(ev.Kind, qt.Equals, election.EventVoteCast)
		c.Assert(*ev.Identity, qt.Equals, testVoter)
		c.Assert(*ev.ChoiceIndex, qt.Equals, 0)
	}

	// pagination after a sequence number
	events, err = store.Events(2, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 2)
	c.Assert(events[0].Seq, qt.Equals, uint64(3))
	c.Assert(events[1].Seq, qt.Equals, uint64(4))

	events, err = store.Events(5, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 0)

	seq, err = store.LastEventSeq()
	c.Assert(err, qt.IsNil)
	c.Assert(seq, qt.Equals, uint64(5))

	// re-persisting an already stored event never duplicates it
	c.Assert(store.PersistCommit(testSnapshot(2, 5), testEvents(5)), qt.IsNil)
	events, err = store.Events(0, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 5)
}
