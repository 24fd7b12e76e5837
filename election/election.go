// Package election implements a permissioned, single-election ballot box: a
// deterministic state machine owned by one administrator who configures the
// poll title, the selectable choices and the eligible-voter whitelist, then
// drives the lifecycle between configuring and active. Each whitelisted
// identity casts at most one vote per election cycle, replay protection is
// epoch based, and the winner projection detects ties at the maximum.
//
// Every mutating method validates all its preconditions before touching any
// state, so a call either fully commits or fully rejects. Committed
// mutations produce append-only events in commit order, handed to an
// optional EventSink, and the resulting state snapshot is handed to an
// optional Persister.
package election

import (
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config contains the dependencies and initial settings of an Election.
type Config struct {
	// Admin is the only identity allowed to configure the poll and drive
	// the lifecycle. It is fixed at creation and never reassignable.
	Admin common.Address
	// Clock returns the current time, used to stamp lifecycle transitions,
	// votes and events. Defaults to time.Now.
	Clock func() time.Time
	// Sink receives every committed event in commit order. Optional.
	Sink EventSink
	// Persister receives the state snapshot and the new events after every
	// committed mutation. Optional.
	Persister Persister
}

// Election is the shared state of a single ballot box. All methods are safe
// for concurrent use. Mutations are serialized by an internal lock and reads
// always observe the last committed state.
type Election struct {
	mu      sync.RWMutex
	admin   common.Address
	clock   func() time.Time
	sink    EventSink
	persist Persister

	title     string
	choices   []Choice
	epoch     uint64
	active    bool
	startedAt time.Time
	endedAt   time.Time

	// members maps every identity ever added to its current membership
	// flag, while roster keeps the insertion order for enumeration.
	members map[common.Address]bool
	roster  []common.Address
	voters  map[common.Address]VoterRecord

	eventSeq uint64
}

// New creates an empty Election in the configuring state. It fails if the
// administrator is the zero address.
func New(cfg Config) (*Election, error) {
	if cfg.Admin.Cmp(common.Address{}) == 0 {
		return nil, ErrInvalidIdentity
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Election{
		admin:   cfg.Admin,
		clock:   clock,
		sink:    cfg.Sink,
		persist: cfg.Persister,
		members: make(map[common.Address]bool),
		voters:  make(map[common.Address]VoterRecord),
	}, nil
}

// Administrator returns the identity that owns the election.
func (e *Election) Administrator() common.Address {
	// fixed at creation, no lock needed
	return e.admin
}

// IsAdministrator reports whether identity is the election administrator.
func (e *Election) IsAdministrator(identity common.Address) bool {
	return identity.Cmp(e.admin) == 0
}

// PollTitle returns the configured poll title.
func (e *Election) PollTitle() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.title
}

// Active reports whether the election is currently accepting votes.
func (e *Election) Active() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Epoch returns the cycle counter of the current or most recent election.
// A zero epoch means no election has ever started.
func (e *Election) Epoch() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.epoch
}

// StartedAt returns the timestamp of the last lifecycle start. The zero time
// means no election has ever started.
func (e *Election) StartedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.startedAt
}

// EndedAt returns the timestamp of the last lifecycle end. The zero time
// means the current cycle has not ended yet, or no election has ever run.
func (e *Election) EndedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.endedAt
}

// SetPollTitle replaces the poll title. Only the administrator may call it,
// only while the election is inactive, and the title cannot be blank.
func (e *Election) SetPollTitle(caller common.Address, title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller.Cmp(e.admin) != 0 {
		return ErrNotAdministrator
	}
	if e.active {
		return ErrElectionActive
	}
	if strings.TrimSpace(title) == "" {
		return ErrEmptyPollTitle
	}
	e.title = title
	e.commit(&Event{
		Kind:      EventPollTitleSet,
		Timestamp: e.clock(),
		Epoch:     e.epoch,
		Title:     title,
	})
	return nil
}
