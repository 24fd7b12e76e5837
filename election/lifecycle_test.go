package election

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
)

func TestStart(t *testing.T) {
	c := qt.New(t)
	e, sink := testElection(c)
	c.Assert(e.SetChoices(adminAddr, []string{"A", "B"}), qt.IsNil)
	c.Assert(e.SetWhitelist(adminAddr, []common.Address{voterX}), qt.IsNil)

	c.Assert(e.Start(stranger), qt.ErrorIs, ErrNotAdministrator)

	c.Assert(e.Start(adminAddr), qt.IsNil)
	c.Assert(e.Active(), qt.IsTrue)
	c.Assert(e.Epoch(), qt.Equals, uint64(1))
	c.Assert(e.StartedAt().IsZero(), qt.IsFalse)
	c.Assert(e.EndedAt().IsZero(), qt.IsTrue)
	c.Assert(sink.last().Kind, qt.Equals, EventElectionStarted)
	c.Assert(sink.last().Timestamp, qt.Equals, e.StartedAt())
	c.Assert(sink.last().Epoch, qt.Equals, uint64(1))

	c.Assert(e.Start(adminAddr), qt.ErrorIs, ErrElectionActive)
	c.Assert(e.Epoch(), qt.Equals, uint64(1))
}

func TestStartWithoutChoices(t *testing.T) {
	c := qt.New(t)
	e, sink := testElection(c)
	c.Assert(e.SetWhitelist(adminAddr, []common.Address{voterX}), qt.IsNil)

	sink.events = nil
	err := e.Start(adminAddr)
	c.Assert(err, qt.ErrorIs, ErrNoChoices)
	c.Assert(e.Epoch(), qt.Equals, uint64(0))
	c.Assert(e.Active(), qt.IsFalse)
	c.Assert(len(sink.events), qt.Equals, 0)
}

func TestStartWithoutVoters(t *testing.T) {
	c := qt.New(t)
	e, _ := testElection(c)
	c.Assert(e.SetChoices(adminAddr, []string{"A"}), qt.IsNil)

	c.Assert(e.Start(adminAddr), qt.ErrorIs, ErrNoVoters)

	// a whitelist whose members are all flipped off counts as empty
	c.Assert(e.SetWhitelist(adminAddr, []common.Address{voterX}), qt.IsNil)
	c.Assert(e.RemoveFromWhitelist(adminAddr, voterX), qt.IsNil)
	c.Assert(e.Start(adminAddr), qt.ErrorIs, ErrNoVoters)
	c.Assert(e.Epoch(), qt.Equals, uint64(0))
}

func TestStartZeroesVoteCounts(t *testing.T) {
	c := qt.New(t)
	e, _ := startedElection(c)

	c.Assert(e.Vote(voterX, 0), qt.IsNil)
	c.Assert(e.Vote(voterY, 0), qt.IsNil)
	c.Assert(e.End(adminAddr), qt.IsNil)

	choice, err := e.ChoiceInfo(0)
	c.Assert(err, qt.IsNil)
	c.Assert(choice.Votes, qt.Equals, uint64(2))

	c.Assert(e.Start(adminAddr), qt.IsNil)
	c.Assert(e.Epoch(), qt.Equals, uint64(2))
	choice, err = e.ChoiceInfo(0)
	c.Assert(err, qt.IsNil)
	c.Assert(choice.Votes, qt.Equals, uint64(0))
	c.Assert(e.EndedAt().IsZero(), qt.IsTrue)
}

func TestEnd(t *testing.T) {
	c := qt.New(t)
	e, sink := testElection(c)

	c.Assert(e.End(adminAddr), qt.ErrorIs, ErrElectionNotActive)

	c.Assert(e.SetChoices(adminAddr, []string{"A"}), qt.IsNil)
	c.Assert(e.SetWhitelist(adminAddr, []common.Address{voterX}), qt.IsNil)
	c.Assert(e.Start(adminAddr), qt.IsNil)

	c.Assert(e.End(stranger), qt.ErrorIs, ErrNotAdministrator)
	c.Assert(e.End(adminAddr), qt.IsNil)
	c.Assert(e.Active(), qt.IsFalse)
	c.Assert(e.Epoch(), qt.Equals, uint64(1))
	c.Assert(e.EndedAt().IsZero(), qt.IsFalse)
	c.Assert(sink.last().Kind, qt.Equals, EventElectionEnded)
	c.Assert(sink.last().Timestamp, qt.Equals, e.EndedAt())

	c.Assert(e.End(adminAddr), qt.ErrorIs, ErrElectionNotActive)
}

func TestRepeatedCycles(t *testing.T) {
	c := qt.New(t)
	e, _ := startedElection(c)

	for epoch := uint64(1); epoch <= 5; epoch++ {
		c.Assert(e.Epoch(), qt.Equals, epoch)
		c.Assert(e.Vote(voterX, 0), qt.IsNil)
		c.Assert(e.End(adminAddr), qt.IsNil)
		c.Assert(e.Epoch(), qt.Equals, epoch, qt.Commentf("end must not change the epoch"))
		c.Assert(e.Start(adminAddr), qt.IsNil)
	}
	c.Assert(e.Epoch(), qt.Equals, uint64(6))
}
