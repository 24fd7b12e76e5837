package election

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Start transitions the election from configuring to active. It requires at
// least one configured choice and at least one currently whitelisted
// identity. On success it zeroes every vote count, increments the epoch,
// records the start timestamp and clears the end timestamp.
func (e *Election) Start(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if e.active {
		return ErrElectionActive
	}
	if len(e.choices) == 0 {
		return ErrNoChoices
	}
	if e.memberCount() == 0 {
		return ErrNoVoters
	}
	now := e.clock()
	for i := range e.choices {
		e.choices[i].Votes = 0
	}
	e.epoch++
	e.active = true
	e.startedAt = now
	e.endedAt = time.Time{}
	e.commit(&Event{
		Kind:      EventElectionStarted,
		Timestamp: now,
		Epoch:     e.epoch,
	})
	return nil
}

// End transitions the election from active back to configuring and records
// the end timestamp. The epoch never changes on end; vote counts stay
// readable as the final standings until the next start.
func (e *Election) End(caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if !e.active {
		return ErrElectionNotActive
	}
	now := e.clock()
	e.active = false
	e.endedAt = now
	e.commit(&Event{
		Kind:      EventElectionEnded,
		Timestamp: now,
		Epoch:     e.epoch,
	})
	return nil
}
