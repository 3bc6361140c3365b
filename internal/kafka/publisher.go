package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"marketplace/internal/domain/order"
)

// Publisher announces domain events after they are persisted.
type Publisher interface {
	OrderCreated(ctx context.Context, o order.Order) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ErrBufferFull is returned when the outgoing queue cannot take another
// event without blocking the caller.
var ErrBufferFull = errors.New("kafka publish buffer full")

// KafkaPublisher queues events and writes them from a background goroutine,
// so callers never wait on the broker. Write failures are logged.
type KafkaPublisher struct {
	w       messageWriter
	timeout time.Duration

	inbox chan kafkago.Message
	done  chan struct{}
	once  sync.Once
}

func NewPublisher(brokers []string) *KafkaPublisher {
	return newKafkaPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  TopicOrderCreated,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, 5*time.Second, 1024)
}

func newKafkaPublisher(w messageWriter, timeout time.Duration, buf int) *KafkaPublisher {
	p := &KafkaPublisher{
		w:       w,
		timeout: timeout,
		inbox:   make(chan kafkago.Message, buf),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			log.Printf("publish %s key=%s: %v", EventOrderCreated, m.Key, err)
		}
		cancel()
	}
}

// OrderCreated encodes the event and queues it. It only fails when the
// event cannot be encoded or the queue is full.
func (p *KafkaPublisher) OrderCreated(_ context.Context, o order.Order) error {
	items := make([]ItemQty, 0, len(o.Cart))
	for _, line := range o.Cart {
		items = append(items, ItemQty{ProductID: line.ProductID, Qty: line.Quantity})
	}
	env, err := NewEnvelope(EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:        o.ID,
		ShopID:         o.ShopID,
		UserID:         o.User.ID,
		Items:          items,
		TotalPrice:     o.TotalPrice,
		VendorSubtotal: o.VendorSubtotal,
		PaymentType:    o.PaymentInfo.Type,
		CreatedAt:      o.CreatedAt,
	}, time.Now())
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(o.ID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventOrderCreated)},
		},
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return fmt.Errorf("publish %s: %w", EventOrderCreated, ErrBufferFull)
	}
}

// Close flushes queued events and closes the writer. Publishing after
// Close panics.
func (p *KafkaPublisher) Close() error {
	p.once.Do(func() { close(p.inbox) })
	<-p.done
	return p.w.Close()
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(context.Context, order.Order) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
