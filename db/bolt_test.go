package db

import (
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBoltStorage(t *testing.T) {
	c := qt.New(t)
	store, err := NewBolt(filepath.Join(t.TempDir(), "ballotbox.db"))
	c.Assert(err, qt.IsNil)
	defer store.Close()

	runStoreTests(c, store)
}

func TestBoltStorageReopen(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "data", "ballotbox.db")
	store, err := NewBolt(path)
	c.Assert(err, qt.IsNil)
	c.Assert(store.PersistCommit(testSnapshot(1, 2), testEvents(1, 2)), qt.IsNil)
	store.Close()

	// state survives the restart
	store, err = NewBolt(path)
	c.Assert(err, qt.IsNil)
	defer store.Close()
	snap, err := store.Snapshot()
	c.Assert(err, qt.IsNil)
	c.Assert(snap.Epoch, qt.Equals, uint64(1))
	c.Assert(snap.Title, qt.Equals, "Board vote")
	seq, err := store.LastEventSeq()
	c.Assert(err, qt.IsNil)
	c.Assert(seq, qt.Equals, uint64(2))
}

func TestNewBoltEmptyPath(t *testing.T) {
	c := qt.New(t)
	_, err := NewBolt("")
	c.Assert(err, qt.IsNotNil)
}
