package election

import (
	"bytes"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is the full serializable state of an Election. Voter entries are
// sorted by identity bytes, so two snapshots of the same state serialize
// byte identical.
type Snapshot struct {
	Admin     common.Address   `json:"admin" bson:"admin"`
	Title     string           `json:"title" bson:"title"`
	Choices   []Choice         `json:"choices" bson:"choices"`
	Epoch     uint64           `json:"epoch" bson:"epoch"`
	Active    bool             `json:"active" bson:"active"`
	StartedAt time.Time        `json:"startedAt" bson:"startedAt"`
	EndedAt   time.Time        `json:"endedAt" bson:"endedAt"`
	Whitelist []WhitelistEntry `json:"whitelist" bson:"whitelist"`
	Voters    []VoterEntry     `json:"voters" bson:"voters"`
	EventSeq  uint64           `json:"eventSeq" bson:"eventSeq"`
}

// VoterEntry is one vote-ledger record inside a Snapshot.
type VoterEntry struct {
	Identity       common.Address `json:"identity" bson:"identity"`
	LastVotedEpoch uint64         `json:"lastVotedEpoch" bson:"lastVotedEpoch"`
	ChoiceIndex    int            `json:"choiceIndex" bson:"choiceIndex"`
	VotedAt        time.Time      `json:"votedAt" bson:"votedAt"`
}

// snapshot builds a Snapshot of the current state. The caller must hold the
// lock.
func (e *Election) snapshot() *Snapshot {
	snap := &Snapshot{
		Admin:     e.admin,
		Title:     e.title,
		Choices:   make([]Choice, len(e.choices)),
		Epoch:     e.epoch,
		Active:    e.active,
		StartedAt: e.startedAt,
		EndedAt:   e.endedAt,
		Whitelist: make([]WhitelistEntry, len(e.roster)),
		Voters:    make([]VoterEntry, 0, len(e.voters)),
		EventSeq:  e.eventSeq,
	}
	copy(snap.Choices, e.choices)
	for i, identity := range e.roster {
		snap.Whitelist[i] = WhitelistEntry{Identity: identity, Active: e.members[identity]}
	}
	for identity, rec := range e.voters {
		snap.Voters = append(snap.Voters, VoterEntry{
			Identity:       identity,
			LastVotedEpoch: rec.LastVotedEpoch,
			ChoiceIndex:    rec.ChoiceIndex,
			VotedAt:        rec.VotedAt,
		})
	}
	sort.Slice(snap.Voters, func(i, j int) bool {
		return bytes.Compare(snap.Voters[i].Identity[:], snap.Voters[j].Identity[:]) < 0
	})
	return snap
}

// Snapshot returns the full current state, suitable for persistence.
func (e *Election) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot()
}

// Restore rebuilds an Election from a previously persisted snapshot. The
// administrator is the snapshot's one; cfg supplies the clock, sink and
// persister exactly as in New, and its Admin field is ignored.
func Restore(cfg Config, snap *Snapshot) (*Election, error) {
	if snap == nil || snap.Admin.Cmp(common.Address{}) == 0 {
		return nil, ErrInvalidIdentity
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	e := &Election{
		admin:     snap.Admin,
		clock:     clock,
		sink:      cfg.Sink,
		persist:   cfg.Persister,
		title:     snap.Title,
		choices:   make([]Choice, len(snap.Choices)),
		epoch:     snap.Epoch,
		active:    snap.Active,
		startedAt: snap.StartedAt,
		endedAt:   snap.EndedAt,
		members:   make(map[common.Address]bool, len(snap.Whitelist)),
		roster:    make([]common.Address, 0, len(snap.Whitelist)),
		voters:    make(map[common.Address]VoterRecord, len(snap.Voters)),
		eventSeq:  snap.EventSeq,
	}
	copy(e.choices, snap.Choices)
	for _, entry := range snap.Whitelist {
		e.roster = append(e.roster, entry.Identity)
		e.members[entry.Identity] = entry.Active
	}
	for _, voter := range snap.Voters {
		e.voters[voter.Identity] = VoterRecord{
			LastVotedEpoch: voter.LastVotedEpoch,
			ChoiceIndex:    voter.ChoiceIndex,
			VotedAt:        voter.VotedAt,
		}
	}
	return e, nil
}
