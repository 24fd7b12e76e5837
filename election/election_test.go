package election

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/log"
)

var (
	adminAddr = common.Address{0x01}
	voterX    = common.Address{0x02}
	voterY    = common.Address{0x03}
	voterZ    = common.Address{0x04}
	stranger  = common.Address{0x05}
)

func TestMain(m *testing.M) {
	log.Init("debug", "stdout", nil)
	os.Exit(m.Run())
}

// fakeClock advances one second per call so every mutation gets a distinct,
// predictable timestamp.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

type recordingSink struct {
	events []*Event
}

func (s *recordingSink) Emit(e *Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) kinds() []EventKind {
	kinds := make([]EventKind, len(s.events))
	for i, e := range s.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (s *recordingSink) last() *Event {
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

type failingSink struct {
	calls int
}

func (s *failingSink) Emit(*Event) error {
	s.calls++
	return errors.New("sink down")
}

type recordingPersister struct {
	commits int
	last    *Snapshot
	events  []*Event
}

func (p *recordingPersister) PersistCommit(snap *Snapshot, events []*Event) error {
	p.commits++
	p.last = snap
	p.events = append(p.events, events...)
	return nil
}

type failingPersister struct{}

func (failingPersister) PersistCommit(*Snapshot, []*Event) error {
	return errors.New("storage down")
}

// testElection returns an election owned by adminAddr with a recording sink
// and a deterministic clock.
func testElection(c *qt.C) (*Election, *recordingSink) {
	sink := &recordingSink{}
	e, err := New(Config{Admin: adminAddr, Clock: newFakeClock().Now, Sink: sink})
	c.Assert(err, qt.IsNil)
	return e, sink
}

// startedElection returns an active election with choices A and B and
// voters X and Y whitelisted, on epoch 1.
func startedElection(c *qt.C) (*Election, *recordingSink) {
	e, sink := testElection(c)
	c.Assert(e.SetChoices(adminAddr, []string{"A", "B"}), qt.IsNil)
	c.Assert(e.SetWhitelist(adminAddr, []common.Address{voterX, voterY}), qt.IsNil)
	c.Assert(e.Start(adminAddr), qt.IsNil)
	return e, sink
}

func TestNew(t *testing.T) {
	c := qt.New(t)

	_, err := New(Config{})
	c.Assert(err, qt.ErrorIs, ErrInvalidIdentity)

	e, err := New(Config{Admin: adminAddr})
	c.Assert(err, qt.IsNil)
	c.Assert(e.Administrator(), qt.Equals, adminAddr)
	c.Assert(e.IsAdministrator(adminAddr), qt.IsTrue)
	c.Assert(e.IsAdministrator(stranger), qt.IsFalse)
	c.Assert(e.Active(), qt.IsFalse)
	c.Assert(e.Epoch(), qt.Equals, uint64(0))
	c.Assert(e.PollTitle(), qt.Equals, "")
	c.Assert(e.ChoiceCount(), qt.Equals, 0)
	c.Assert(e.WhitelistCount(), qt.Equals, 0)
	c.Assert(e.StartedAt().IsZero(), qt.IsTrue)
	c.Assert(e.EndedAt().IsZero(), qt.IsTrue)
}

func TestSetPollTitle(t *testing.T) {
	c := qt.New(t)
	e, sink := testElection(c)

	c.Assert(e.SetPollTitle(stranger, "Board vote"), qt.ErrorIs, ErrNotAdministrator)
	c.Assert(e.SetPollTitle(adminAddr, ""), qt.ErrorIs, ErrEmptyPollTitle)
	c.Assert(e.SetPollTitle(adminAddr, "   "), qt.ErrorIs, ErrEmptyPollTitle)
	c.Assert(len(sink.events), qt.Equals, 0)

	c.Assert(e.SetPollTitle(adminAddr, "Board vote"), qt.IsNil)
	c.Assert(e.PollTitle(), qt.Equals, "Board vote")
	c.Assert(sink.last().Kind, qt.Equals, EventPollTitleSet)
	c.Assert(sink.last().Title, qt.Equals, "Board vote")

	// titles are replaced wholesale like any other configuration
	c.Assert(e.SetPollTitle(adminAddr, "Board vote, second round"), qt.IsNil)
	c.Assert(e.PollTitle(), qt.Equals, "Board vote, second round")
}

func TestSetPollTitleWhileActive(t *testing.T) {
	c := qt.New(t)
	e, _ := startedElection(c)

	err := e.SetPollTitle(adminAddr, "too late")
	c.Assert(err, qt.ErrorIs, ErrElectionActive)
	c.Assert(e.PollTitle(), qt.Equals, "")

	c.Assert(e.End(adminAddr), qt.IsNil)
	c.Assert(e.SetPollTitle(adminAddr, "next round"), qt.IsNil)
	c.Assert(e.PollTitle(), qt.Equals, "next round")
}
