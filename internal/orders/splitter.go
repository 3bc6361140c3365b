package orders

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/order"
	"marketplace/internal/kafka"
)

type orderCreator interface {
	Create(ctx context.Context, o *order.Order) error
}

// VendorCart is the slice of a checkout cart that belongs to one shop.
type VendorCart struct {
	ShopID string
	Lines  []order.CartLine
}

// GroupByVendor partitions cart by shop id. Vendors appear in the order of
// their first line and each vendor keeps its lines in input order.
// Repeated products stay as separate lines.
func GroupByVendor(cart []order.CartLine) []VendorCart {
	index := make(map[string]int)
	var groups []VendorCart
	for _, line := range cart {
		i, ok := index[line.ShopID]
		if !ok {
			i = len(groups)
			index[line.ShopID] = i
			groups = append(groups, VendorCart{ShopID: line.ShopID})
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}
	return groups
}

// Subtotal is the sum of price snapshot times quantity, rounded to cents.
func Subtotal(lines []order.CartLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.PriceSnapshot).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2).InexactFloat64()
}

type Splitter struct {
	orders orderCreator
	events kafka.Publisher
	now    func() time.Time
}

func NewSplitter(orders orderCreator, events kafka.Publisher) *Splitter {
	if events == nil {
		events = kafka.NoopPublisher{}
	}
	return &Splitter{orders: orders, events: events, now: time.Now}
}

// Split creates one order per vendor in the checkout cart. Creates are
// independent: when one fails, Split stops and returns the orders already
// created together with a validation error. Nothing is rolled back.
func (s *Splitter) Split(ctx context.Context, co order.Checkout) ([]order.Order, error) {
	if len(co.Cart) == 0 {
		return nil, apperr.Validation("cart is empty")
	}
	for _, line := range co.Cart {
		if line.ShopID == "" {
			return nil, apperr.Validation("every cart line needs a shopId")
		}
	}

	created := make([]order.Order, 0)
	for _, vc := range GroupByVendor(co.Cart) {
		at := s.now().UTC()
		o := order.Order{
			ShopID:          vc.ShopID,
			Cart:            vc.Lines,
			ShippingAddress: co.ShippingAddress,
			User:            co.User,
			// whole-checkout total, copied as received
			TotalPrice:     co.TotalPrice,
			VendorSubtotal: Subtotal(vc.Lines),
			PaymentInfo:    co.PaymentInfo,
			Status:         order.StatusProcessing,
			PaidAt:         at,
			CreatedAt:      at,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return created, apperr.Wrap(apperr.KindValidation, "could not create order for shop "+vc.ShopID, err)
		}
		created = append(created, o)

		if err := s.events.OrderCreated(ctx, o); err != nil {
			log.Printf("order %s created but event not published: %v", o.ID, err)
		}
	}
	return created, nil
}
