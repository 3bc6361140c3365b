// Package storetest holds the behaviour every store backend must share.
// Backend test files call Run with a constructor for a clean store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain/media"
	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
	"marketplace/internal/store"
)

func Run(t *testing.T, s *store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, s.Users) })
	t.Run("shops", func(t *testing.T) { testShops(t, s.Shops) })
	t.Run("products", func(t *testing.T) { testProducts(t, s.Products) })
	t.Run("orders", func(t *testing.T) { testOrders(t, s.Orders) })
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.com"
}

// base is truncated to milliseconds so every backend round-trips it exactly.
func base() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
}

func testUsers(t *testing.T, users store.Users) {
	ctx := context.Background()
	email := uniqueEmail("buyer")

	u := &user.User{Name: "Ada", Email: email, PasswordHash: "hash", Role: user.RoleUser,
		Avatar: media.Image{PublicID: "avatars/ada", URL: "http://img/ada.png"}}
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := &user.User{Name: "Other", Email: email, PasswordHash: "hash", Role: user.RoleUser}
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrDuplicate)

	got, err := users.ByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "avatars/ada", got.Avatar.PublicID)
	require.NotNil(t, got.Addresses, "an empty address book reads back as []")
	assert.Empty(t, got.Addresses)

	got.Addresses = append(got.Addresses, user.Address{ID: "a1", Country: "NL", City: "Utrecht", AddressType: "Home"})
	require.NoError(t, users.Update(ctx, &got))

	got, err = users.ByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, "Home", got.Addresses[0].AddressType)

	_, err = users.ByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)

	ghost := &user.User{ID: uuid.NewString(), Email: uniqueEmail("ghost")}
	assert.ErrorIs(t, users.Update(ctx, ghost), store.ErrNotFound)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = users.ByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, u.ID), store.ErrNotFound)
}

func testShops(t *testing.T, shops store.Shops) {
	ctx := context.Background()
	email := uniqueEmail("seller")

	sh := &shop.Shop{Name: "Corner", Email: email, PasswordHash: "hash", Address: "1 Main St",
		PhoneNumber: "555", ZipCode: "1000", Role: shop.RoleSeller}
	require.NoError(t, shops.Create(ctx, sh))
	require.NotEmpty(t, sh.ID)

	assert.ErrorIs(t, shops.Create(ctx, &shop.Shop{Name: "Copy", Email: email, Address: "x", PhoneNumber: "1", ZipCode: "1"}), store.ErrDuplicate)

	got, err := shops.ByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, sh.ID, got.ID)

	got.Description = "open late"
	require.NoError(t, shops.Update(ctx, &got))
	got, err = shops.ByID(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "open late", got.Description)

	_, err = shops.ByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testProducts(t *testing.T, products store.Products) {
	ctx := context.Background()
	shopA, shopB := uuid.NewString(), uuid.NewString()
	t0 := base()

	mk := func(name, shopID string, at time.Time) *product.Product {
		p := &product.Product{Name: name, Description: "d", Category: "c", DiscountPrice: 10, Stock: 3,
			ShopID: shopID, Shop: shop.Summary{ID: shopID, Name: "s"}, CreatedAt: at,
			Images: []media.Image{{PublicID: "product-images/" + name, URL: "http://img/" + name}}}
		require.NoError(t, products.Create(ctx, p))
		return p
	}
	oldest := mk("oldest", shopA, t0)
	middle := mk("middle", shopB, t0.Add(time.Minute))
	newest := mk("newest", shopA, t0.Add(2*time.Minute))

	all, err := products.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, idsIn(all, newest.ID, middle.ID, oldest.ID))

	byShop, err := products.ListByShop(ctx, shopA)
	require.NoError(t, err)
	require.Len(t, byShop, 2)
	assert.Equal(t, newest.ID, byShop[0].ID)
	assert.Equal(t, oldest.ID, byShop[1].ID)

	got, err := products.ByID(ctx, middle.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "product-images/middle", got.Images[0].PublicID)

	removed, err := products.Delete(ctx, middle.ID)
	require.NoError(t, err)
	assert.Equal(t, middle.ID, removed.ID)
	assert.Len(t, removed.Images, 1)

	_, err = products.ByID(ctx, middle.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = products.Delete(ctx, middle.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	empty, err := products.ListByShop(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testOrders(t *testing.T, orders store.Orders) {
	ctx := context.Background()
	buyer := order.UserRef{ID: uuid.NewString(), Name: "Ada", Email: "ada@example.com"}
	shopA, shopB := uuid.NewString(), uuid.NewString()
	t0 := base()

	mk := func(shopID string, at time.Time) *order.Order {
		o := &order.Order{
			ShopID:          shopID,
			Cart:            []order.CartLine{{ProductID: "p1", ShopID: shopID, Quantity: 2, PriceSnapshot: 5}},
			ShippingAddress: order.ShippingAddress{Country: "NL", City: "Utrecht", Address1: "1 Main", ZipCode: "1000"},
			User:            buyer,
			TotalPrice:      30,
			VendorSubtotal:  10,
			PaymentInfo:     order.PaymentInfo{Type: "Cash On Delivery"},
			Status:          order.StatusProcessing,
			PaidAt:          at,
			CreatedAt:       at,
		}
		require.NoError(t, orders.Create(ctx, o))
		require.NotEmpty(t, o.ID)
		return o
	}
	first := mk(shopA, t0)
	second := mk(shopB, t0.Add(time.Second))

	mine, err := orders.ListByUser(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	forA, err := orders.ListByShop(ctx, shopA)
	require.NoError(t, err)
	require.Len(t, forA, 1)
	assert.Equal(t, first.ID, forA[0].ID)
	assert.Equal(t, 30.0, forA[0].TotalPrice)
	assert.Equal(t, 10.0, forA[0].VendorSubtotal)
	require.Len(t, forA[0].Cart, 1)
	assert.Equal(t, 2, forA[0].Cart[0].Quantity)

	delivered := t0.Add(time.Hour)
	first.Status = order.StatusDelivered
	first.DeliveredAt = &delivered
	first.PaymentInfo.Status = order.PaymentSucceeded
	require.NoError(t, orders.Update(ctx, first))

	got, err := orders.ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)
	assert.Equal(t, order.PaymentSucceeded, got.PaymentInfo.Status)
	require.NotNil(t, got.DeliveredAt)
	assert.True(t, delivered.Equal(*got.DeliveredAt))

	_, err = orders.ByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, orders.Update(ctx, &order.Order{ID: uuid.NewString()}), store.ErrNotFound)
}

// idsIn returns the ids of items whose id is in want, in list order.
func idsIn(items []product.Product, want ...string) []string {
	keep := map[string]bool{}
	for _, id := range want {
		keep[id] = true
	}
	var out []string
	for _, p := range items {
		if keep[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}
