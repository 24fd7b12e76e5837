package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/ballotbox/election"
)

// snapshotID is the fixed document key of the single election snapshot.
const snapshotID = "current"

// MongoStorage uses an external MongoDB service for storing the election
// snapshot and the event journal.
type MongoStorage struct {
	client   *mongo.Client
	database string

	snapshots *mongo.Collection
	events    *mongo.Collection
}

// NewMongo connects to the MongoDB service at url and prepares the ballot
// box collections on the given database.
func NewMongo(url, database string) (*MongoStorage, error) {
	var err error
	ms := &MongoStorage{}
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "url", url, "database", database)
	// preparing connection
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := time.Second * 10
	opts.ConnectTimeout = &timeout
	// create a new client with the connection options
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// init the collections
	ms.client = client
	ms.database = database
	if err := ms.initCollections(database); err != nil {
		return nil, err
	}
	// if the reset flag is enabled, drop the database documents
	if reset := os.Getenv("BALLOTBOX_MONGO_RESET_DB"); reset != "" {
		if err := ms.Reset(); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

// Close disconnects from the MongoDB service.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset drops the snapshot and journal collections.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.snapshots.Drop(ctx); err != nil {
		return err
	}
	if err := ms.events.Drop(ctx); err != nil {
		return err
	}
	return ms.initCollections(ms.database)
}

// PersistCommit appends the journal events of one committed mutation and
// then replaces the snapshot document. Event writes are upserts keyed by
// sequence number, so re-persisting after a partial failure never
// duplicates journal entries.
func (ms *MongoStorage) PersistCommit(snap *election.Snapshot, events []*election.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range events {
		filter := bson.M{"_id": ev.Seq}
		update := bson.M{"$set": ev}
		opts := options.Update().SetUpsert(true)
		if _, err := ms.events.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("cannot store event %d: %w", ev.Seq, err)
		}
	}
	filter := bson.M{"_id": snapshotID}
	update := bson.M{"$set": snap}
	opts := options.Update().SetUpsert(true)
	if _, err := ms.snapshots.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("cannot store snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the last persisted election snapshot.
func (ms *MongoStorage) Snapshot() (*election.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result := ms.snapshots.FindOne(ctx, bson.M{"_id": snapshotID})
	snap := &election.Snapshot{}
	if err := result.Decode(snap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cannot decode snapshot: %w", err)
	}
	return snap, nil
}

// Events returns up to limit journal events after the given sequence number,
// in ascending order.
func (ms *MongoStorage) Events(afterSeq uint64, limit int) ([]*election.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	filter := bson.M{"_id": bson.M{"$gt": afterSeq}}
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		findOpts = findOpts.SetLimit(int64(limit))
	}
	cursor, err := ms.events.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("cannot query events: %w", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			log.Warnw("failed to close events cursor", "error", err)
		}
	}()
	events := []*election.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("cannot decode events: %w", err)
	}
	return events, nil
}

// LastEventSeq returns the highest sequence number in the journal, zero when
// the journal is empty.
func (ms *MongoStorage) LastEventSeq() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	findOpts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	result := ms.events.FindOne(ctx, bson.M{}, findOpts)
	ev := &election.Event{}
	if err := result.Decode(ev); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot decode last event: %w", err)
	}
	return ev.Seq, nil
}
