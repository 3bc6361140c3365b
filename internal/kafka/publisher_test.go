package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain/order"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []kafkago.Message
	err    error
	delay  time.Duration
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	time.Sleep(w.delay)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestOrderCreated_WritesEnvelope(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, time.Second, 8)

	o := order.Order{
		ID:             "o-1",
		ShopID:         "shop-a",
		User:           order.UserRef{ID: "u-1"},
		Cart:           []order.CartLine{{ProductID: "p1", ShopID: "shop-a", Quantity: 2}},
		TotalPrice:     50,
		VendorSubtotal: 20,
		PaymentInfo:    order.PaymentInfo{Type: "Cash On Delivery"},
	}
	require.NoError(t, p.OrderCreated(context.Background(), o))
	require.NoError(t, p.Close())
	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)
	assert.Equal(t, "o-1", string(w.msgs[0].Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	assert.Equal(t, EventOrderCreated, env.EventType)
	assert.Equal(t, "o-1", env.CorrelationID)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)

	payload, err := UnwrapPayload[OrderCreatedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "shop-a", payload.ShopID)
	assert.Equal(t, []ItemQty{{ProductID: "p1", Qty: 2}}, payload.Items)
	assert.Equal(t, 20.0, payload.VendorSubtotal)
}

func TestOrderCreated_DoesNotWaitForBroker(t *testing.T) {
	w := &recordingWriter{delay: 200 * time.Millisecond}
	p := newKafkaPublisher(w, time.Second, 8)

	start := time.Now()
	for _, id := range []string{"o-1", "o-2", "o-3"} {
		require.NoError(t, p.OrderCreated(context.Background(), order.Order{ID: id}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	require.NoError(t, p.Close())
	assert.Len(t, w.msgs, 3)
}

func TestOrderCreated_WriteErrorIsNotReturned(t *testing.T) {
	w := &recordingWriter{err: errors.New("no leader")}
	p := newKafkaPublisher(w, time.Second, 8)

	assert.NoError(t, p.OrderCreated(context.Background(), order.Order{ID: "o-2"}))
	require.NoError(t, p.Close())
	assert.Len(t, w.msgs, 1)
}

func TestOrderCreated_BufferFull(t *testing.T) {
	block := make(chan struct{})
	w := &blockingWriter{release: block, started: make(chan struct{})}
	p := newKafkaPublisher(w, time.Second, 1)

	// the first event is taken by the writer goroutine, the second fills the queue
	require.NoError(t, p.OrderCreated(context.Background(), order.Order{ID: "o-1"}))
	<-w.started
	require.NoError(t, p.OrderCreated(context.Background(), order.Order{ID: "o-2"}))

	err := p.OrderCreated(context.Background(), order.Order{ID: "o-3"})
	assert.ErrorIs(t, err, ErrBufferFull)

	close(block)
	require.NoError(t, p.Close())
}

type blockingWriter struct {
	release <-chan struct{}
	started chan struct{}
	once    sync.Once
}

func (w *blockingWriter) WriteMessages(context.Context, ...kafkago.Message) error {
	w.once.Do(func() { close(w.started) })
	<-w.release
	return nil
}

func (w *blockingWriter) Close() error { return nil }
