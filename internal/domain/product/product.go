package product

import (
	"time"

	"marketplace/internal/domain/media"
	"marketplace/internal/domain/shop"
)

type Product struct {
	ID            string        `json:"_id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	Description   string        `json:"description" bson:"description"`
	Category      string        `json:"category" bson:"category"`
	Tags          string        `json:"tags,omitempty" bson:"tags,omitempty"`
	OriginalPrice float64       `json:"originalPrice,omitempty" bson:"original_price,omitempty"`
	DiscountPrice float64       `json:"discountPrice" bson:"discount_price"`
	Stock         int           `json:"stock" bson:"stock"`
	Images        []media.Image `json:"images" bson:"images"`
	ShopID        string        `json:"shopId" bson:"shop_id"`
	Shop          shop.Summary  `json:"shop" bson:"shop"`
	SoldOut       int           `json:"sold_out" bson:"sold_out"`
	CreatedAt     time.Time     `json:"createdAt" bson:"created_at"`
}
