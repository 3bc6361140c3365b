package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"marketplace/internal/domain/shop"
	"marketplace/internal/domain/user"
	"marketplace/internal/store"
)

type Users struct {
	col *mongo.Collection
}

func (r *Users) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt
	if u.Addresses == nil {
		u.Addresses = []user.Address{}
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	return nil
}

func (r *Users) ByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	if err := r.col.FindOne(ctx, byID(id)).Decode(&u); err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (r *Users) ByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (r *Users) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	if u.Addresses == nil {
		u.Addresses = []user.Address{}
	}
	res, err := r.col.ReplaceOne(ctx, byID(u.ID), u)
	if err != nil {
		return fmt.Errorf("replace user: %w", translate(err))
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Users) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type Shops struct {
	col *mongo.Collection
}

func (r *Shops) Create(ctx context.Context, s *shop.Shop) error {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert shop: %w", translate(err))
	}
	return nil
}

func (r *Shops) ByID(ctx context.Context, id string) (shop.Shop, error) {
	var s shop.Shop
	if err := r.col.FindOne(ctx, byID(id)).Decode(&s); err != nil {
		return shop.Shop{}, translate(err)
	}
	return s, nil
}

func (r *Shops) ByEmail(ctx context.Context, email string) (shop.Shop, error) {
	var s shop.Shop
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&s); err != nil {
		return shop.Shop{}, translate(err)
	}
	return s, nil
}

func (r *Shops) Update(ctx context.Context, s *shop.Shop) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, byID(s.ID), s)
	if err != nil {
		return fmt.Errorf("replace shop: %w", translate(err))
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
