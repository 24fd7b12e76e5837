package db

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/ballotbox/election"
)

const (
	boltSnapshotBucket = "snapshot"
	boltEventsBucket   = "events"
)

// BoltStorage keeps the election snapshot and the event journal in an
// embedded BoltDB file, for deployments that don't want to run an external
// database. Each commit is written in a single transaction, so the snapshot
// and its journal events can never diverge on disk.
type BoltStorage struct {
	db *bolt.DB
}

// NewBolt opens, or creates, the BoltDB file at path and prepares the ballot
// box buckets.
func NewBolt(path string) (*BoltStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is not defined")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("cannot create data directory: %w", err)
	}
	log.Infow("opening bolt database", "path", path)
	bdb, err := bolt.Open(path, 0o600, bolt.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot open bolt database: %w", err)
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltSnapshotBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(boltEventsBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create buckets: %w", err)
	}
	return &BoltStorage{db: bdb}, nil
}

// Close releases the database file.
func (bs *BoltStorage) Close() {
	if err := bs.db.Close(); err != nil {
		log.Warn(err)
	}
}

// PersistCommit stores the snapshot and the journal events of one committed
// mutation in a single transaction.
func (bs *BoltStorage) PersistCommit(snap *election.Snapshot, events []*election.Event) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cannot encode snapshot: %w", err)
	}
	encoded := make([][]byte, len(events))
	for i, ev := range events {
		if encoded[i], err = json.Marshal(ev); err != nil {
			return fmt.Errorf("cannot encode event %d: %w", ev.Seq, err)
		}
	}
	return bs.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(boltSnapshotBucket)).Put([]byte(snapshotID), data); err != nil {
			return err
		}
		journal := tx.Bucket([]byte(boltEventsBucket))
		for i, ev := range events {
			if err := journal.Put(eventKey(ev.Seq), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot returns the last persisted election snapshot.
func (bs *BoltStorage) Snapshot() (*election.Snapshot, error) {
	var data []byte
	err := bs.db.View(func(tx *bolt.Tx) error {
		if stored := tx.Bucket([]byte(boltSnapshotBucket)).Get([]byte(snapshotID)); stored != nil {
			data = append(data, stored...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	snap := &election.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("cannot decode snapshot: %w", err)
	}
	return snap, nil
}

// Events returns up to limit journal events after the given sequence number,
// in ascending order.
func (bs *BoltStorage) Events(afterSeq uint64, limit int) ([]*election.Event, error) {
	events := []*election.Event{}
	err := bs.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(boltEventsBucket)).Cursor()
		for key, value := cursor.Seek(eventKey(afterSeq + 1)); key != nil; key, value = cursor.Next() {
			if limit > 0 && len(events) >= limit {
				break
			}
			ev := &election.Event{}
			if err := json.Unmarshal(value, ev); err != nil {
				return fmt.Errorf("cannot decode event %x: %w", key, err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// LastEventSeq returns the highest sequence number in the journal, zero when
// the journal is empty.
func (bs *BoltStorage) LastEventSeq() (uint64, error) {
	var seq uint64
	err := bs.db.View(func(tx *bolt.Tx) error {
		if key, _ := tx.Bucket([]byte(boltEventsBucket)).Cursor().Last(); key != nil {
			seq = binary.BigEndian.Uint64(key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// eventKey encodes a sequence number as a big-endian key, so the journal
// bucket iterates in commit order.
func eventKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
