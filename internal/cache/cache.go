package cache

import (
	"context"
	"errors"

	"marketplace/internal/domain/product"
)

type ProductCache interface {
	Get(ctx context.Context, key string) ([]product.Product, error)
	Set(ctx context.Context, key string, products []product.Product) error
	Delete(ctx context.Context, keys ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

const allProductsKey = "products:all"

func shopProductsKey(shopID string) string { return "products:shop:" + shopID }
