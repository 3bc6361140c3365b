package products

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/media"
	"marketplace/internal/domain/product"
	"marketplace/internal/domain/shop"
	mediastore "marketplace/internal/media"
	"marketplace/internal/store"
)

// Catalog owns product writes: it resolves the owning shop, pushes images
// to the image host and keeps the host in step on delete.
type Catalog struct {
	products store.Products
	shops    store.Shops
	uploader mediastore.Uploader
}

func NewCatalog(products store.Products, shops store.Shops, uploader mediastore.Uploader) *Catalog {
	return &Catalog{products: products, shops: shops, uploader: uploader}
}

type NewProduct struct {
	ShopID        string
	Name          string
	Description   string
	Category      string
	Tags          string
	OriginalPrice float64
	DiscountPrice float64
	Stock         int
	Images        []*multipart.FileHeader
}

func (c *Catalog) Create(ctx context.Context, in NewProduct) (product.Product, error) {
	sh, err := c.shops.ByID(ctx, in.ShopID)
	if errors.Is(err, store.ErrNotFound) {
		return product.Product{}, apperr.Validation("Shop id is invalid")
	}
	if err != nil {
		return product.Product{}, err
	}

	images := make([]media.Image, 0, len(in.Images))
	for _, fh := range in.Images {
		img, err := c.upload(ctx, fh)
		if err != nil {
			c.discard(ctx, images)
			return product.Product{}, err
		}
		images = append(images, img)
	}

	p := product.Product{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Tags:          in.Tags,
		OriginalPrice: in.OriginalPrice,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Images:        images,
		ShopID:        sh.ID,
		Shop:          sh.Summary(),
	}
	if err := c.products.Create(ctx, &p); err != nil {
		c.discard(ctx, images)
		return product.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (c *Catalog) upload(ctx context.Context, fh *multipart.FileHeader) (media.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return media.Image{}, apperr.Validation("unreadable image " + fh.Filename)
	}
	defer f.Close()
	return c.uploader.Upload(ctx, mediastore.FolderProducts, fh.Filename, f)
}

// Delete removes a product owned by seller. Products of other shops are
// reported as missing.
func (c *Catalog) Delete(ctx context.Context, seller shop.Shop, id string) error {
	p, err := c.products.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.ShopID != seller.ID) {
		return apperr.NotFound("Product not found with this id!")
	}
	if err != nil {
		return err
	}

	removed, err := c.products.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Product not found with this id!")
	}
	if err != nil {
		return err
	}
	c.discard(ctx, removed.Images)
	return nil
}

// discard deletes images best-effort; the product record is authoritative.
func (c *Catalog) discard(ctx context.Context, images []media.Image) {
	for _, img := range images {
		if err := c.uploader.Delete(ctx, img.PublicID); err != nil {
			log.Printf("delete image %s: %v", img.PublicID, err)
		}
	}
}
