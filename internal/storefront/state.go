package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
)

// State mirrors the server data a storefront renders: the signed-in buyer,
// the signed-in seller, the catalog and the local cart. Construct one per
// session and pass it to whatever renders it.
type State struct {
	client *Client

	mu       sync.RWMutex
	user     *user.User
	seller   *shop.Shop
	products []product.Product
	cart     []order.CartLine
}

func NewState(c *Client) *State {
	return &State{client: c}
}

// Load runs the boot sequence: buyer, then seller, then catalog. A missing
// or rejected session leaves that slot empty.
func (s *State) Load(ctx context.Context) error {
	u, err := s.client.LoadUser(ctx)
	switch {
	case err == nil:
		s.setUser(&u)
	case IsUnauthorized(err):
		s.setUser(nil)
	default:
		return fmt.Errorf("load user: %w", err)
	}

	sh, err := s.client.LoadSeller(ctx)
	switch {
	case err == nil:
		s.setSeller(&sh)
	case IsUnauthorized(err):
		s.setSeller(nil)
	default:
		return fmt.Errorf("load seller: %w", err)
	}

	products, err := s.client.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return nil
}

func (s *State) setUser(u *user.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *State) setSeller(sh *shop.Shop) {
	s.mu.Lock()
	s.seller = sh
	s.mu.Unlock()
}

func (s *State) User() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return user.User{}, false
	}
	return *s.user, true
}

func (s *State) Seller() (shop.Shop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seller == nil {
		return shop.Shop{}, false
	}
	return *s.seller, true
}

func (s *State) Products() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]product.Product(nil), s.products...)
}

// AddToCart snapshots the product's current price into a new cart line.
func (s *State) AddToCart(p product.Product, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = append(s.cart, order.CartLine{
		ProductID:     p.ID,
		ShopID:        p.ShopID,
		Name:          p.Name,
		Quantity:      qty,
		PriceSnapshot: p.DiscountPrice,
	})
}

func (s *State) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cart[:0]
	for _, l := range s.cart {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.cart = kept
}

func (s *State) Cart() []order.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]order.CartLine(nil), s.cart...)
}

func (s *State) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, l := range s.cart {
		total = total.Add(decimal.NewFromFloat(l.PriceSnapshot).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2).InexactFloat64()
}

var ErrNotSignedIn = errors.New("sign in before checking out")

// Checkout submits the cart and clears it once the orders exist.
func (s *State) Checkout(ctx context.Context, addr order.ShippingAddress, pay order.PaymentInfo) ([]order.Order, error) {
	u, ok := s.User()
	if !ok {
		return nil, ErrNotSignedIn
	}
	co := order.Checkout{
		Cart:            s.Cart(),
		ShippingAddress: addr,
		User:            order.UserRef{ID: u.ID, Name: u.Name, Email: u.Email},
		TotalPrice:      s.CartTotal(),
		PaymentInfo:     pay,
	}
	orders, err := s.client.CreateOrder(ctx, co)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
	return orders, nil
}
