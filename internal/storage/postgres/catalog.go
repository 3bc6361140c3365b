package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace/internal/domain/media"
	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/store"
)

const productColumns = `id, name, description, category, tags, original_price, discount_price, stock, images, shop_id, shop, sold_out, created_at`

type Products struct {
	db *pgxpool.Pool
}

func scanProduct(row rowScanner) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Tags, &p.OriginalPrice, &p.DiscountPrice,
		&p.Stock, &p.Images, &p.ShopID, &p.Shop, &p.SoldOut, &p.CreatedAt)
	if p.Images == nil {
		p.Images = []media.Image{}
	}
	return p, translate(err)
}

func (r *Products) Create(ctx context.Context, p *product.Product) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Images == nil {
		p.Images = []media.Image{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, p.ID, p.Name, p.Description, p.Category, p.Tags, p.OriginalPrice, p.DiscountPrice,
		p.Stock, p.Images, p.ShopID, p.Shop, p.SoldOut, p.CreatedAt)
	return translate(err)
}

func (r *Products) ByID(ctx context.Context, id string) (product.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *Products) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	return collectProducts(rows, err)
}

func (r *Products) ListByShop(ctx context.Context, shopID string) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE shop_id=$1
		ORDER BY created_at DESC
	`, shopID)
	return collectProducts(rows, err)
}

func collectProducts(rows pgx.Rows, err error) ([]product.Product, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Products) Delete(ctx context.Context, id string) (product.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id))
}

const orderColumns = `id, shop_id, cart, shipping_address, buyer, total_price, vendor_subtotal, payment_info, status, paid_at, delivered_at, created_at`

type Orders struct {
	db *pgxpool.Pool
}

func scanOrder(row rowScanner) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.ShopID, &o.Cart, &o.ShippingAddress, &o.User, &o.TotalPrice, &o.VendorSubtotal,
		&o.PaymentInfo, &o.Status, &o.PaidAt, &o.DeliveredAt, &o.CreatedAt)
	return o, translate(err)
}

func (r *Orders) Create(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, shop_id, user_id, cart, shipping_address, buyer, total_price, vendor_subtotal,
		                    payment_info, status, paid_at, delivered_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, o.ID, o.ShopID, o.User.ID, o.Cart, o.ShippingAddress, o.User, o.TotalPrice, o.VendorSubtotal,
		o.PaymentInfo, o.Status, o.PaidAt, o.DeliveredAt, o.CreatedAt)
	return translate(err)
}

func (r *Orders) ByID(ctx context.Context, id string) (order.Order, error) {
	return scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
}

func (r *Orders) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	return collectOrders(rows, err)
}

func (r *Orders) ListByShop(ctx context.Context, shopID string) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE shop_id=$1 ORDER BY created_at DESC`, shopID)
	return collectOrders(rows, err)
}

func collectOrders(rows pgx.Rows, err error) ([]order.Order, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Orders) Update(ctx context.Context, o *order.Order) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE orders
		SET cart=$2, shipping_address=$3, payment_info=$4, status=$5, delivered_at=$6
		WHERE id=$1
	`, o.ID, o.Cart, o.ShippingAddress, o.PaymentInfo, o.Status, o.DeliveredAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
