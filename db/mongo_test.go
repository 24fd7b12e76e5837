package db

import (
	"context"
	"fmt"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/ballotbox/test"
)

var testDB *MongoStorage

func TestMain(m *testing.M) {
	log.Init("debug", "stdout", nil)
	ctx := context.Background()
	// start a MongoDB container for testing
	dbContainer, err := test.StartMongoContainer(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to start MongoDB container: %v", err))
	}

	// get the MongoDB connection string
	mongoURI, err := dbContainer.Endpoint(ctx, "mongodb")
	if err != nil {
		panic(fmt.Sprintf("failed to get MongoDB endpoint: %v", err))
	}

	testDB, err = NewMongo(mongoURI, test.RandomDatabaseName())
	if err != nil {
		panic(fmt.Sprintf("failed to create new MongoDB connection: %v", err))
	}

	code := m.Run()

	// close the database connection
	testDB.Close()

	// stop the MongoDB container
	if err := dbContainer.Terminate(ctx); err != nil {
		panic(fmt.Sprintf("failed to stop MongoDB container: %v", err))
	}

	os.Exit(code)
}

func TestMongoStorage(t *testing.T) {
	c := qt.New(t)
	c.Assert(testDB.Reset(), qt.IsNil)

	runStoreTests(c, testDB)
}

func TestMongoStorageReset(t *testing.T) {
	c := qt.New(t)
	c.Assert(testDB.Reset(), qt.IsNil)
	c.Assert(testDB.PersistCommit(testSnapshot(1, 1), testEvents(1)), qt.IsNil)

	c.Assert(testDB.Reset(), qt.IsNil)
	_, err := testDB.Snapshot()
	c.Assert(err, qt.ErrorIs, ErrNotFound)
	seq, err := testDB.LastEventSeq()
	c.Assert(err, qt.IsNil)
	c.Assert(seq, qt.Equals, uint64(0))
}

func TestMongoStorageJournalValidator(t *testing.T) {
	c := qt.New(t)
	c.Assert(testDB.Reset(), qt.IsNil)

	// the journal schema rejects events with an unknown kind
	events := testEvents(1)
	events[0].Kind = "tampered"
	err := testDB.PersistCommit(testSnapshot(1, 1), events)
	c.Assert(err, qt.IsNotNil)
}
