package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/vocdoni/ballotbox/election"
)

func TestDispatcherDelivers(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type received struct {
		event      election.Event
		deliveryID string
		kind       string
	}
	recvCh := make(chan received, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev election.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		recvCh <- received{ev, r.Header.Get(DeliveryIDHeader), r.Header.Get(EventKindHeader)}
	}))
	defer srv.Close()

	dispatcher := NewDispatcher(ctx, srv.URL, time.Minute, time.Millisecond*5)
	go dispatcher.Start()

	identity := voterX
	choice := 1
	c.Assert(dispatcher.Emit(&election.Event{
		Seq:         7,
		Kind:        election.EventVoteCast,
		Timestamp:   time.Now().UTC(),
		Epoch:       2,
		Identity:    &identity,
		ChoiceIndex: &choice,
	}), qt.IsNil)

	select {
	case delivery := <-dispatcher.Delivered:
		c.Assert(delivery.Failed, qt.IsFalse)
		c.Assert(delivery.Retries, qt.Equals, 0)
		_, err := uuid.Parse(delivery.ID)
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("delivery timed out")
	}

	got := <-recvCh
	c.Assert(got.event.Seq, qt.Equals, uint64(7))
	c.Assert(got.event.Kind, qt.Equals, election.EventVoteCast)
	c.Assert(got.event.Epoch, qt.Equals, uint64(2))
	c.Assert(got.event.Identity, qt.IsNotNil)
	c.Assert(*got.event.Identity, qt.Equals, voterX)
	c.Assert(got.event.ChoiceIndex, qt.IsNotNil)
	c.Assert(*got.event.ChoiceIndex, qt.Equals, 1)
	c.Assert(got.kind, qt.Equals, string(election.EventVoteCast))
	c.Assert(got.deliveryID, qt.Not(qt.Equals), "")
}

func TestDispatcherRetries(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0
	var deliveryIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		deliveryIDs = append(deliveryIDs, r.Header.Get(DeliveryIDHeader))
		if attempts <= 2 {
			http.Error(w, "not yet", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dispatcher := NewDispatcher(ctx, srv.URL, time.Minute, time.Millisecond*5)
	go dispatcher.Start()
	c.Assert(dispatcher.Emit(&election.Event{Seq: 1, Kind: election.EventElectionStarted, Epoch: 1}), qt.IsNil)

	select {
	case delivery := <-dispatcher.Delivered:
		c.Assert(delivery.Failed, qt.IsFalse)
		c.Assert(delivery.Retries, qt.Equals, 2)
	case <-time.After(5 * time.Second):
		c.Fatal("delivery timed out")
	}

	mu.Lock()
	defer mu.Unlock()
	c.Assert(attempts, qt.Equals, 3)
	// the delivery ID must not change across retries
	c.Assert(deliveryIDs, qt.HasLen, 3)
	c.Assert(deliveryIDs[1], qt.Equals, deliveryIDs[0])
	c.Assert(deliveryIDs[2], qt.Equals, deliveryIDs[0])
}

func TestDispatcherDropsAfterMaxRetries(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		http.Error(w, "receiver down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dispatcher := NewDispatcher(ctx, srv.URL, time.Minute, time.Millisecond*2)
	go dispatcher.Start()
	c.Assert(dispatcher.Emit(&election.Event{Seq: 1, Kind: election.EventElectionEnded, Epoch: 1}), qt.IsNil)

	select {
	case delivery := <-dispatcher.Delivered:
		c.Assert(delivery.Failed, qt.IsTrue)
		c.Assert(delivery.Retries, qt.Equals, DefaultMaxRetries)
	case <-time.After(10 * time.Second):
		c.Fatal("drop timed out")
	}

	mu.Lock()
	defer mu.Unlock()
	c.Assert(attempts, qt.Equals, DefaultMaxRetries+1)
}

func TestDispatcherDropsAfterTTL(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "receiver down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	// the TTL is already over when the first attempt fails
	dispatcher := NewDispatcher(ctx, srv.URL, time.Millisecond, time.Millisecond*20)
	go dispatcher.Start()
	c.Assert(dispatcher.Emit(&election.Event{Seq: 1, Kind: election.EventElectionStarted, Epoch: 1}), qt.IsNil)

	select {
	case delivery := <-dispatcher.Delivered:
		c.Assert(delivery.Failed, qt.IsTrue)
		c.Assert(delivery.Retries, qt.Equals, 0)
	case <-time.After(5 * time.Second):
		c.Fatal("drop timed out")
	}
}

func TestDispatcherKeepsCommitOrder(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seqCh := make(chan uint64, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev election.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		seqCh <- ev.Seq
	}))
	defer srv.Close()

	dispatcher := NewDispatcher(ctx, srv.URL, time.Minute, time.Millisecond*2)
	go dispatcher.Start()
	for seq := uint64(1); seq <= 3; seq++ {
		c.Assert(dispatcher.Emit(&election.Event{Seq: seq, Kind: election.EventVoteCast, Epoch: 1}), qt.IsNil)
	}

	for i := 0; i < 3; i++ {
		select {
		case delivery := <-dispatcher.Delivered:
			c.Assert(delivery.Failed, qt.IsFalse)
		case <-time.After(5 * time.Second):
			c.Fatal("delivery timed out")
		}
	}
	for want := uint64(1); want <= 3; want++ {
		c.Assert(<-seqCh, qt.Equals, want)
	}
}
