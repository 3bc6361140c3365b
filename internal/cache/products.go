package cache

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"marketplace/internal/domain/product"
	"marketplace/internal/store"
)

// Products is a read-through cache over the product listings. Single-product
// reads go straight to the store; writes drop the affected listings.
//
// A listing fetched before an invalidation is never written back: each
// invalidation bumps gen, and a fill only stores its result when gen is
// unchanged. This holds within one process; across instances a stale fill
// can survive until its TTL.
type Products struct {
	store.Products
	cache ProductCache
	group singleflight.Group

	mu  sync.Mutex // orders fills against invalidations
	gen uint64
}

func NewProducts(next store.Products, c ProductCache) *Products {
	return &Products{Products: next, cache: c}
}

func (p *Products) List(ctx context.Context) ([]product.Product, error) {
	return p.load(ctx, allProductsKey, p.Products.List)
}

func (p *Products) ListByShop(ctx context.Context, shopID string) ([]product.Product, error) {
	return p.load(ctx, shopProductsKey(shopID), func(ctx context.Context) ([]product.Product, error) {
		return p.Products.ListByShop(ctx, shopID)
	})
}

func (p *Products) Create(ctx context.Context, pr *product.Product) error {
	if err := p.Products.Create(ctx, pr); err != nil {
		return err
	}
	p.invalidate(ctx, pr.ShopID)
	return nil
}

func (p *Products) Delete(ctx context.Context, id string) (product.Product, error) {
	removed, err := p.Products.Delete(ctx, id)
	if err != nil {
		return removed, err
	}
	p.invalidate(ctx, removed.ShopID)
	return removed, nil
}

func (p *Products) load(ctx context.Context, key string, fetch func(context.Context) ([]product.Product, error)) ([]product.Product, error) {
	cached, err := p.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Printf("cache get %s: %v", key, err)
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		p.mu.Lock()
		gen := p.gen
		p.mu.Unlock()

		products, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen {
			return products, nil
		}
		if err := p.cache.Set(ctx, key, products); err != nil {
			log.Printf("cache set %s: %v", key, err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.Product), nil
}

// invalidate failures are logged only; listings then expire by TTL.
func (p *Products) invalidate(ctx context.Context, shopID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if err := p.cache.Delete(ctx, allProductsKey, shopProductsKey(shopID)); err != nil {
		log.Printf("cache invalidate shop %s: %v", shopID, err)
	}
}
