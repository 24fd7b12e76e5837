package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/enriquebris/goconcurrentqueue"
	"github.com/google/uuid"
	"github.com/vocdoni/ballotbox/election"
	"go.vocdoni.io/dvote/log"
)

const (
	// DefaultDeliveryTTL defines the default time window to keep retrying a delivery.
	DefaultDeliveryTTL = 2 * time.Minute
	// DefaultThrottleTime is the default pause between webhook posts.
	DefaultThrottleTime = time.Millisecond * 500
	// DefaultMaxRetries is how many times to retry a delivery when the receiver returns an error.
	DefaultMaxRetries = 10

	// DeliveryIDHeader carries the delivery identifier, stable across retries,
	// so receivers can deduplicate.
	DeliveryIDHeader = "X-Ballotbox-Delivery"
	// EventKindHeader carries the event kind of the posted payload.
	EventKindHeader = "X-Ballotbox-Event"
)

// Delivery is one election event on its way to the webhook receiver. The ID
// does not change across retries. Failed is set when the delivery is dropped
// after exhausting its retries or its TTL.
type Delivery struct {
	ID        string
	Event     *election.Event
	CreatedAt time.Time
	Retries   int
	Failed    bool
}

// Dispatcher posts committed election events to a webhook URL, one at a time,
// in commit order. It implements election.EventSink: Emit enqueues the event
// and returns immediately, the processing loop owns sending and retries. Every
// finished delivery, successful or dropped, is sent back through the Delivered
// channel, which the consumer must drain.
type Dispatcher struct {
	Delivered chan *Delivery
	ctx       context.Context
	items     *goconcurrentqueue.FIFO
	url       string
	client    *http.Client
	ttl       time.Duration
	throttle  time.Duration
}

// NewDispatcher creates a webhook dispatcher posting to the given URL with the
// provided TTL and throttle time.
func NewDispatcher(ctx context.Context, url string, ttl, throttle time.Duration) *Dispatcher {
	if ttl == 0 {
		ttl = DefaultDeliveryTTL
	}
	if throttle == 0 {
		throttle = DefaultThrottleTime
	}
	return &Dispatcher{
		Delivered: make(chan *Delivery, 1),
		ctx:       ctx,
		items:     goconcurrentqueue.NewFIFO(),
		url:       url,
		client:    &http.Client{Timeout: 10 * time.Second},
		ttl:       ttl,
		throttle:  throttle,
	}
}

// Emit implements election.EventSink. It enqueues the event for delivery and
// returns without waiting for the post.
func (d *Dispatcher) Emit(ev *election.Event) error {
	delivery := &Delivery{
		ID:        uuid.New().String(),
		Event:     ev,
		CreatedAt: time.Now(),
	}
	log.Debugw("webhook delivery enqueued",
		"delivery", delivery.ID,
		"seq", ev.Seq,
		"kind", string(ev.Kind))
	return d.items.Enqueue(delivery)
}

// Start starts the delivery loop. It dequeues deliveries and posts them to
// the webhook URL. If a post fails, the delivery is re-enqueued up to
// DefaultMaxRetries times within the TTL window. The function returns when
// the context is canceled.
func (d *Dispatcher) Start() {
	ticker := time.NewTicker(d.throttle)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.processNextDelivery()
		}
	}
}

// dequeueDelivery attempts to dequeue the next delivery from the queue.
func (d *Dispatcher) dequeueDelivery() (*Delivery, error) {
	item, err := d.items.Dequeue()
	if err != nil {
		if err.Error() != "empty queue" {
			log.Warnw("dequeue error", "error", err)
		}
		return nil, err
	}
	delivery, ok := item.(*Delivery)
	if !ok {
		log.Warnw("invalid delivery type in queue")
		return nil, fmt.Errorf("invalid delivery type")
	}
	return delivery, nil
}

// processNextDelivery processes the next delivery in the queue.
func (d *Dispatcher) processNextDelivery() {
	delivery, err := d.dequeueDelivery()
	if err != nil {
		return // nothing to process
	}
	if err := d.post(delivery); err != nil {
		d.handleFailedDelivery(delivery, err)
		return
	}
	d.handleSuccessfulDelivery(delivery)
}

// post sends the delivery's event to the webhook URL as a JSON document. Any
// status code outside the 2xx range counts as a failed delivery.
func (d *Dispatcher) post(delivery *Delivery) error {
	body, err := json.Marshal(delivery.Event)
	if err != nil {
		return fmt.Errorf("cannot encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(d.ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DeliveryIDHeader, delivery.ID)
	req.Header.Set(EventKindHeader, string(delivery.Event.Kind))
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// handleFailedDelivery re-enqueues a failed delivery. If the delivery cannot
// be re-enqueued anymore it is marked failed and reported through the
// Delivered channel.
func (d *Dispatcher) handleFailedDelivery(delivery *Delivery, err error) {
	log.Warnw("failed to deliver event",
		"delivery", delivery.ID,
		"seq", delivery.Event.Seq,
		"kind", string(delivery.Event.Kind),
		"error", err)

	if err := d.reenqueue(delivery); err != nil {
		log.Warnw("webhook delivery dropped",
			"delivery", delivery.ID,
			"seq", delivery.Event.Seq,
			"retries", delivery.Retries,
			"error", err)
		delivery.Failed = true
		d.Delivered <- delivery
	}
}

// handleSuccessfulDelivery reports a delivered event through the Delivered
// channel.
func (d *Dispatcher) handleSuccessfulDelivery(delivery *Delivery) {
	log.Debugw("event delivered",
		"delivery", delivery.ID,
		"seq", delivery.Event.Seq,
		"retries", delivery.Retries)
	d.Delivered <- delivery
}

// reenqueue tries to re-enqueue the delivery. It returns an error if the
// delivery has reached the maximum number of retries or its TTL has expired.
func (d *Dispatcher) reenqueue(delivery *Delivery) error {
	// check if we have to enqueue it again or not
	if delivery.Retries >= DefaultMaxRetries || time.Since(delivery.CreatedAt) > d.ttl {
		return fmt.Errorf("TTL or max retries reached")
	}
	// enqueue it again
	delivery.Retries++
	if err := d.items.Enqueue(delivery); err != nil {
		return fmt.Errorf("cannot enqueue the delivery: %w", err)
	}
	log.Debugw("webhook delivery re-enqueued",
		"delivery", delivery.ID,
		"seq", delivery.Event.Seq,
		"retry", delivery.Retries)
	return nil
}
