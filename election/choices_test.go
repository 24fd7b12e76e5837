package election

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
)

func TestSetChoices(t *testing.T) {
	c := qt.New(t)
	e, sink := testElection(c)

	c.Assert(e.SetChoices(stranger, []string{"A"}), qt.ErrorIs, ErrNotAdministrator)
	c.Assert(e.SetChoices(adminAddr, nil), qt.ErrorIs, ErrNoChoices)
	c.Assert(e.SetChoices(adminAddr, []string{}), qt.ErrorIs, ErrNoChoices)
	c.Assert(e.SetChoices(adminAddr, []string{"A", " "}), qt.ErrorIs, ErrBlankChoiceLabel)
	c.Assert(e.ChoiceCount(), qt.Equals, 0)
	c.Assert(len(sink.events), qt.Equals, 0)

	c.Assert(e.SetChoices(adminAddr, []string{"A", "B", "C"}), qt.IsNil)
	c.Assert(e.ChoiceCount(), qt.Equals, 3)
	c.Assert(sink.last().Kind, qt.Equals, EventChoicesSet)
	c.Assert(sink.last().Count, qt.Equals, 3)

	// wholesale replace, never merge
	c.Assert(e.SetChoices(adminAddr, []string{"D", "E"}), qt.IsNil)
	c.Assert(e.ChoiceCount(), qt.Equals, 2)
	first, err := e.ChoiceInfo(0)
	c.Assert(err, qt.IsNil)
	c.Assert(first.Label, qt.Equals, "D")
	c.Assert(first.Votes, qt.Equals, uint64(0))
}

func TestSetChoicesWhileActive(t *testing.T) {
	c := qt.New(t)
	e, _ := startedElection(c)

	err := e.SetChoices(adminAddr, []string{"C"})
	c.Assert(err, qt.ErrorIs, ErrElectionActive)
	c.Assert(e.ChoiceCount(), qt.Equals, 2)
}

func TestSetChoicesResetsVoteCounts(t *testing.T) {
	c := qt.New(t)
	e, _ := startedElection(c)

	c.Assert(e.Vote(voterX, 0), qt.IsNil)
	c.Assert(e.End(adminAddr), qt.IsNil)

	c.Assert(e.SetChoices(adminAddr, []string{"A", "B"}), qt.IsNil)
	choice, err := e.ChoiceInfo(0)
	c.Assert(err, qt.IsNil)
	c.Assert(choice.Votes, qt.Equals, uint64(0))
}

func TestChoiceInfoOutOfRange(t *testing.T) {
	c := qt.New(t)
	e, _ := testElection(c)
	c.Assert(e.SetChoices(adminAddr, []string{"A", "B"}), qt.IsNil)

	_, err := e.ChoiceInfo(2)
	c.Assert(err, qt.ErrorIs, ErrChoiceIndexOutOfRange)
	_, err = e.ChoiceInfo(-1)
	c.Assert(err, qt.ErrorIs, ErrChoiceIndexOutOfRange)

	choice, err := e.ChoiceInfo(1)
	c.Assert(err, qt.IsNil)
	c.Assert(choice.Label, qt.Equals, "B")
}

func TestChoicesReturnsCopy(t *testing.T) {
	c := qt.New(t)
	e, _ := testElection(c)
	c.Assert(e.SetChoices(adminAddr, []string{"A", "B"}), qt.IsNil)
	c.Assert(e.SetWhitelist(adminAddr, []common.Address{voterX}), qt.IsNil)
	c.Assert(e.Start(adminAddr), qt.IsNil)

	choices := e.Choices()
	choices[0].Votes = 99
	fresh, err := e.ChoiceInfo(0)
	c.Assert(err, qt.IsNil)
	c.Assert(fresh.Votes, qt.Equals, uint64(0))
}
