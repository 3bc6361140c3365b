package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/order"
	"marketplace/internal/kafka"
)

type fakeOrders struct {
	created []order.Order
	failOn  string
}

func (f *fakeOrders) Create(_ context.Context, o *order.Order) error {
	if o.ShopID == f.failOn {
		return errors.New("document failed validation")
	}
	o.ID = fmt.Sprintf("o-%d", len(f.created)+1)
	f.created = append(f.created, *o)
	return nil
}

type fakeEvents struct {
	published []string
	err       error
}

func (f *fakeEvents) OrderCreated(_ context.Context, o order.Order) error {
	f.published = append(f.published, o.ID)
	return f.err
}
func (f *fakeEvents) Close() error { return nil }

func line(shop, product string) order.CartLine {
	return order.CartLine{ProductID: product, ShopID: shop, Quantity: 1, PriceSnapshot: 10}
}

func checkout(cart ...order.CartLine) order.Checkout {
	return order.Checkout{
		Cart:            cart,
		ShippingAddress: order.ShippingAddress{Country: "NL", City: "Utrecht", Address1: "1 Main", ZipCode: "1000"},
		User:            order.UserRef{ID: "u-1", Name: "Ada"},
		TotalPrice:      99.5,
		PaymentInfo:     order.PaymentInfo{ID: "pi_1", Status: "succeeded", Type: "Credit Card"},
	}
}

func TestSplit_InterleavedVendors(t *testing.T) {
	store := &fakeOrders{}
	s := NewSplitter(store, &fakeEvents{})

	got, err := s.Split(context.Background(), checkout(line("A", "p1"), line("B", "p2"), line("A", "p3")))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "A", got[0].ShopID)
	assert.Equal(t, []string{"p1", "p3"}, products(got[0].Cart))
	assert.Equal(t, "B", got[1].ShopID)
	assert.Equal(t, []string{"p2"}, products(got[1].Cart))
}

func TestSplit_SingleVendorKeepsWholeCart(t *testing.T) {
	s := NewSplitter(&fakeOrders{}, nil)
	co := checkout(line("A", "p1"), line("A", "p2"), line("A", "p1"))

	got, err := s.Split(context.Background(), co)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, co.Cart, got[0].Cart)
}

func TestSplit_AllDistinctVendors(t *testing.T) {
	s := NewSplitter(&fakeOrders{}, nil)
	got, err := s.Split(context.Background(), checkout(line("A", "p1"), line("B", "p2"), line("C", "p3")))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, o := range got {
		assert.Len(t, o.Cart, 1)
	}
}

func TestSplit_CopiesCheckoutFields(t *testing.T) {
	s := NewSplitter(&fakeOrders{}, nil)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	co := checkout(line("A", "p1"), line("B", "p2"))
	co.Cart[0].Quantity = 3

	got, err := s.Split(context.Background(), co)
	require.NoError(t, err)
	for _, o := range got {
		assert.Equal(t, co.ShippingAddress, o.ShippingAddress)
		assert.Equal(t, co.User, o.User)
		assert.Equal(t, co.PaymentInfo, o.PaymentInfo)
		assert.Equal(t, 99.5, o.TotalPrice)
		assert.Equal(t, order.StatusProcessing, o.Status)
		assert.Equal(t, at, o.PaidAt)
	}
	assert.Equal(t, 30.0, got[0].VendorSubtotal)
	assert.Equal(t, 10.0, got[1].VendorSubtotal)
}

func TestSplit_PartialFailureKeepsEarlierOrders(t *testing.T) {
	store := &fakeOrders{failOn: "B"}
	events := &fakeEvents{}
	s := NewSplitter(store, events)

	got, err := s.Split(context.Background(), checkout(line("A", "p1"), line("B", "p2"), line("C", "p3")))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// A was persisted, C was never attempted
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ShopID)
	require.Len(t, store.created, 1)
	assert.Equal(t, []string{"o-1"}, events.published)
}

func TestSplit_RejectsBadCart(t *testing.T) {
	store := &fakeOrders{}
	s := NewSplitter(store, nil)

	_, err := s.Split(context.Background(), checkout())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = s.Split(context.Background(), checkout(line("A", "p1"), line("", "p2")))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, store.created)
}

func TestSplit_EventFailureDoesNotFailCheckout(t *testing.T) {
	s := NewSplitter(&fakeOrders{}, &fakeEvents{err: errors.New("broker down")})
	got, err := s.Split(context.Background(), checkout(line("A", "p1")))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSplit_UnresponsiveBrokerDoesNotDelayCheckout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	held := make(chan net.Conn, 16)
	t.Cleanup(func() {
		_ = ln.Close()
		for {
			select {
			case c := <-held:
				_ = c.Close()
			default:
				return
			}
		}
	})
	// accept connections and never answer
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			select {
			case held <- conn:
			default:
				_ = conn.Close()
			}
		}
	}()

	s := NewSplitter(&fakeOrders{}, kafka.NewPublisher([]string{ln.Addr().String()}))
	start := time.Now()
	got, err := s.Split(context.Background(), checkout(line("A", "p1"), line("B", "p2"), line("C", "p3")))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Less(t, time.Since(start), time.Second)
}

// Randomised carts: k distinct vendors give k orders and the carts
// together are the input cart as a multiset.
func TestSplit_PartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vendors := []string{"A", "B", "C", "D", "E"}

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(12)
		cart := make([]order.CartLine, n)
		distinct := map[string]bool{}
		for j := range cart {
			v := vendors[rng.Intn(len(vendors))]
			distinct[v] = true
			cart[j] = order.CartLine{ProductID: fmt.Sprintf("p%d", rng.Intn(4)), ShopID: v, Quantity: 1 + rng.Intn(3)}
		}

		got, err := NewSplitter(&fakeOrders{}, nil).Split(context.Background(), checkout(cart...))
		require.NoError(t, err)
		require.Len(t, got, len(distinct))

		var union []order.CartLine
		for _, o := range got {
			for _, l := range o.Cart {
				assert.Equal(t, o.ShopID, l.ShopID)
			}
			union = append(union, o.Cart...)
		}
		assert.ElementsMatch(t, cart, union)
		assert.Equal(t, firstAppearance(cart), shopIDs(got))
	}
}

func TestSubtotal_UsesDecimalArithmetic(t *testing.T) {
	lines := []order.CartLine{
		{PriceSnapshot: 0.1, Quantity: 3},
		{PriceSnapshot: 0.2, Quantity: 1},
	}
	assert.Equal(t, 0.5, Subtotal(lines))
}

func products(lines []order.CartLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.ProductID
	}
	return out
}

func shopIDs(orders []order.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ShopID
	}
	return out
}

func firstAppearance(cart []order.CartLine) []string {
	seen := map[string]int{}
	for i, l := range cart {
		if _, ok := seen[l.ShopID]; !ok {
			seen[l.ShopID] = i
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return seen[out[i]] < seen[out[j]] })
	return out
}
