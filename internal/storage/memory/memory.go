// Package memory is a process-local backend used by tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
	"marketplace/internal/store"
)

// New returns a Store whose collections share nothing but the process.
func New() *store.Store {
	return &store.Store{
		Users:    &Users{byID: map[string]user.User{}},
		Shops:    &Shops{byID: map[string]shop.Shop{}},
		Products: &Products{byID: map[string]product.Product{}},
		Orders:   &Orders{byID: map[string]order.Order{}},
		Close:    func(context.Context) error { return nil },
	}
}

func now() time.Time { return time.Now().UTC() }

type Users struct {
	mu   sync.RWMutex
	byID map[string]user.User
}

func (s *Users) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	u.UpdatedAt = u.CreatedAt
	s.byID[u.ID] = cloneUser(*u)
	return nil
}

func (s *Users) ByID(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return user.User{}, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) ByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return user.User{}, store.ErrNotFound
}

func (s *Users) Update(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return store.ErrNotFound
	}
	for id, existing := range s.byID {
		if id != u.ID && existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.UpdatedAt = now()
	s.byID[u.ID] = cloneUser(*u)
	return nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// cloneUser copies the address slice and keeps it non-nil, so an empty
// address book encodes as [] like the other backends.
func cloneUser(u user.User) user.User {
	u.Addresses = append(make([]user.Address, 0, len(u.Addresses)), u.Addresses...)
	return u
}

type Shops struct {
	mu   sync.RWMutex
	byID map[string]shop.Shop
}

func (s *Shops) Create(_ context.Context, sh *shop.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == sh.Email {
			return store.ErrDuplicate
		}
	}
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = now()
	}
	sh.UpdatedAt = sh.CreatedAt
	s.byID[sh.ID] = *sh
	return nil
}

func (s *Shops) ByID(_ context.Context, id string) (shop.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.byID[id]
	if !ok {
		return shop.Shop{}, store.ErrNotFound
	}
	return sh, nil
}

func (s *Shops) ByEmail(_ context.Context, email string) (shop.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.byID {
		if sh.Email == email {
			return sh, nil
		}
	}
	return shop.Shop{}, store.ErrNotFound
}

func (s *Shops) Update(_ context.Context, sh *shop.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[sh.ID]; !ok {
		return store.ErrNotFound
	}
	sh.UpdatedAt = now()
	s.byID[sh.ID] = *sh
	return nil
}

type Products struct {
	mu    sync.RWMutex
	byID  map[string]product.Product
	order []string
}

func (s *Products) Create(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := s.byID[p.ID]; ok {
		return store.ErrDuplicate
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.Images = append(p.Images[:0:0], p.Images...)
	s.byID[p.ID] = *p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Products) ByID(_ context.Context, id string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return product.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Products) List(_ context.Context) ([]product.Product, error) {
	return s.filter(func(product.Product) bool { return true }), nil
}

func (s *Products) ListByShop(_ context.Context, shopID string) ([]product.Product, error) {
	return s.filter(func(p product.Product) bool { return p.ShopID == shopID }), nil
}

// filter walks newest insertions first so equal timestamps still list newest first.
func (s *Products) filter(keep func(product.Product) bool) []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]product.Product, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		p, ok := s.byID[s.order[i]]
		if ok && keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Products) Delete(_ context.Context, id string) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return product.Product{}, store.ErrNotFound
	}
	delete(s.byID, id)
	return p, nil
}

type Orders struct {
	mu    sync.RWMutex
	byID  map[string]order.Order
	order []string
}

func (s *Orders) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if _, ok := s.byID[o.ID]; ok {
		return store.ErrDuplicate
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	o.Cart = append(o.Cart[:0:0], o.Cart...)
	s.byID[o.ID] = *o
	s.order = append(s.order, o.ID)
	return nil
}

func (s *Orders) ByID(_ context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return order.Order{}, store.ErrNotFound
	}
	return o, nil
}

func (s *Orders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	return s.filter(func(o order.Order) bool { return o.User.ID == userID }), nil
}

func (s *Orders) ListByShop(_ context.Context, shopID string) ([]order.Order, error) {
	return s.filter(func(o order.Order) bool { return o.ShopID == shopID }), nil
}

func (s *Orders) filter(keep func(order.Order) bool) []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.Order, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		o, ok := s.byID[s.order[i]]
		if ok && keep(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Orders) Update(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[o.ID]; !ok {
		return store.ErrNotFound
	}
	s.byID[o.ID] = *o
	return nil
}
