package store

import (
	"context"
	"errors"

	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Users is the user collection. Email is unique.
type Users interface {
	Create(ctx context.Context, u *user.User) error
	ByID(ctx context.Context, id string) (user.User, error)
	ByEmail(ctx context.Context, email string) (user.User, error)
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id string) error
}

// Shops is the seller collection. Email is unique.
type Shops interface {
	Create(ctx context.Context, s *shop.Shop) error
	ByID(ctx context.Context, id string) (shop.Shop, error)
	ByEmail(ctx context.Context, email string) (shop.Shop, error)
	Update(ctx context.Context, s *shop.Shop) error
}

type Products interface {
	Create(ctx context.Context, p *product.Product) error
	ByID(ctx context.Context, id string) (product.Product, error)
	// List returns every product, newest first.
	List(ctx context.Context) ([]product.Product, error)
	ListByShop(ctx context.Context, shopID string) ([]product.Product, error)
	// Delete removes the product and returns what was removed.
	Delete(ctx context.Context, id string) (product.Product, error)
}

type Orders interface {
	Create(ctx context.Context, o *order.Order) error
	ByID(ctx context.Context, id string) (order.Order, error)
	ListByUser(ctx context.Context, userID string) ([]order.Order, error)
	ListByShop(ctx context.Context, shopID string) ([]order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

// Store bundles the collections of one backend.
type Store struct {
	Users    Users
	Shops    Shops
	Products Products
	Orders   Orders

	Close func(ctx context.Context) error
}
