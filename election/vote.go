package election

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// VoterRecord is one persistent vote-ledger entry. Records from past epochs
// are retained for audit and excluded from the current tally by epoch
// comparison, never by deletion.
type VoterRecord struct {
	LastVotedEpoch uint64    `json:"lastVotedEpoch" bson:"lastVotedEpoch"`
	ChoiceIndex    int       `json:"choiceIndex" bson:"choiceIndex"`
	VotedAt        time.Time `json:"votedAt" bson:"votedAt"`
}

// VoterStatus is the current-epoch view of one identity's ledger entry.
// ChoiceIndex and VotedAt are meaningful only when VotedThisEpoch is true.
type VoterStatus struct {
	Whitelisted    bool      `json:"whitelisted"`
	VotedThisEpoch bool      `json:"votedThisEpoch"`
	ChoiceIndex    int       `json:"choiceIndex"`
	VotedAt        time.Time `json:"votedAt"`
}

// Vote records identity's vote for the choice at index. Preconditions are
// checked in order, first failure wins with no partial effect: the election
// must be active, the index in range, the identity currently whitelisted and
// not yet voted in the current epoch. On success the ledger entry, the vote
// count and the emitted event commit atomically.
func (e *Election) Vote(identity common.Address, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return ErrElectionNotActive
	}
	if index < 0 || index >= len(e.choices) {
		return ErrChoiceIndexOutOfRange
	}
	if !e.members[identity] {
		return ErrNotWhitelisted
	}
	if rec, voted := e.voters[identity]; voted && rec.LastVotedEpoch >= e.epoch {
		return ErrAlreadyVoted
	}
	now := e.clock()
	e.voters[identity] = VoterRecord{
		LastVotedEpoch: e.epoch,
		ChoiceIndex:    index,
		VotedAt:        now,
	}
	e.choices[index].Votes++
	e.commit(&Event{
		Kind:        EventVoteCast,
		Timestamp:   now,
		Epoch:       e.epoch,
		Identity:    &identity,
		ChoiceIndex: &index,
	})
	return nil
}

// VoterStatus returns identity's whitelist membership and whether it voted
// in the current epoch. Voted-this-epoch is recomputed from the epoch
// comparison at read time, so a record from a past epoch never reads as
// voted.
func (e *Election) VoterStatus(identity common.Address) VoterStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	status := VoterStatus{Whitelisted: e.members[identity]}
	if rec, voted := e.voters[identity]; voted && rec.LastVotedEpoch == e.epoch {
		status.VotedThisEpoch = true
		status.ChoiceIndex = rec.ChoiceIndex
		status.VotedAt = rec.VotedAt
	}
	return status
}
