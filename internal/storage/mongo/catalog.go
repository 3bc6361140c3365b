package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"marketplace/internal/domain/media"
	"marketplace/internal/domain/order"
	"marketplace/internal/domain/product"
	"marketplace/internal/store"
)

type Products struct {
	col *mongo.Collection
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
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", translate(err))
	}
	return nil
}

func (r *Products) ByID(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	if err := r.col.FindOne(ctx, byID(id)).Decode(&p); err != nil {
		return product.Product{}, translate(err)
	}
	return p, nil
}

func (r *Products) List(ctx context.Context) ([]product.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *Products) ListByShop(ctx context.Context, shopID string) ([]product.Product, error) {
	return r.find(ctx, bson.M{"shop_id": shopID})
}

func (r *Products) find(ctx context.Context, filter bson.M) ([]product.Product, error) {
	cur, err := r.col.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	out := make([]product.Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

func (r *Products) Delete(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	if err := r.col.FindOneAndDelete(ctx, byID(id)).Decode(&p); err != nil {
		return product.Product{}, translate(err)
	}
	return p, nil
}

type Orders struct {
	col *mongo.Collection
}

func (r *Orders) Create(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		o.ID = newID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", translate(err))
	}
	return nil
}

func (r *Orders) ByID(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	if err := r.col.FindOne(ctx, byID(id)).Decode(&o); err != nil {
		return order.Order{}, translate(err)
	}
	return o, nil
}

func (r *Orders) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.find(ctx, bson.M{"user._id": userID})
}

func (r *Orders) ListByShop(ctx context.Context, shopID string) ([]order.Order, error) {
	return r.find(ctx, bson.M{"shop_id": shopID})
}

func (r *Orders) find(ctx context.Context, filter bson.M) ([]order.Order, error) {
	cur, err := r.col.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	out := make([]order.Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}

func (r *Orders) Update(ctx context.Context, o *order.Order) error {
	res, err := r.col.ReplaceOne(ctx, byID(o.ID), o)
	if err != nil {
		return fmt.Errorf("replace order: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
