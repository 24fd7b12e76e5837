// Package db provides the persistence layer of the ballot box: the last
// committed election snapshot plus the append-only event journal, behind one
// Store interface with interchangeable MongoDB and BoltDB backends.
package db

import "github.com/vocdoni/ballotbox/election"

// Store persists the election snapshot and the append-only event journal.
// Every Store is also an election persister, so it can be wired into the
// state machine directly.
type Store interface {
	// PersistCommit stores the snapshot and appends the journal events of
	// one committed mutation.
	PersistCommit(snap *election.Snapshot, events []*election.Event) error
	// Snapshot returns the last persisted snapshot, or ErrNotFound when the
	// store has never seen a commit.
	Snapshot() (*election.Snapshot, error)
	// Events returns up to limit journal events with sequence numbers
	// strictly greater than afterSeq, in ascending order. A limit of zero
	// or less means no limit.
	Events(afterSeq uint64, limit int) ([]*election.Event, error)
	// LastEventSeq returns the highest sequence number in the journal, zero
	// when the journal is empty.
	LastEventSeq() (uint64, error)
	// basic db management operations
	Close()
}
