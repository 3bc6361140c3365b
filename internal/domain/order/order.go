package order

import "time"

const (
	StatusProcessing  = "Processing"
	StatusTransferred = "Transferred to delivery partner"
	StatusShipping    = "Shipping"
	StatusReceived    = "Received"
	StatusOnTheWay    = "On the way"
	StatusDelivered   = "Delivered"

	PaymentSucceeded = "Succeeded"
)

// ValidStatus reports whether s is a status a seller may set.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusTransferred, StatusShipping, StatusReceived, StatusOnTheWay, StatusDelivered:
		return true
	}
	return false
}

// CartLine is one entry of a checkout cart. ShopID is the vendor key the
// order split partitions on.
type CartLine struct {
	ProductID     string  `json:"productId" bson:"product_id" binding:"required"`
	ShopID        string  `json:"shopId" bson:"shop_id" binding:"required"`
	Name          string  `json:"name,omitempty" bson:"name,omitempty"`
	Quantity      int     `json:"quantity" bson:"quantity" binding:"required,gt=0"`
	PriceSnapshot float64 `json:"priceSnapshot" bson:"price_snapshot" binding:"gte=0"`
}

type ShippingAddress struct {
	Country     string `json:"country" bson:"country" binding:"required"`
	City        string `json:"city" bson:"city" binding:"required"`
	Address1    string `json:"address1" bson:"address1" binding:"required"`
	Address2    string `json:"address2,omitempty" bson:"address2,omitempty"`
	ZipCode     string `json:"zipCode" bson:"zip_code" binding:"required"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
}

// UserRef is the buyer snapshot attached to an order.
type UserRef struct {
	ID    string `json:"_id" bson:"_id" binding:"required"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

type PaymentInfo struct {
	ID     string `json:"id,omitempty" bson:"id,omitempty"`
	Status string `json:"status,omitempty" bson:"status,omitempty"`
	Type   string `json:"type" bson:"type" binding:"required"`
}

type Order struct {
	ID              string          `json:"_id" bson:"_id"`
	ShopID          string          `json:"shopId" bson:"shop_id"`
	Cart            []CartLine      `json:"cart" bson:"cart"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shipping_address"`
	User            UserRef         `json:"user" bson:"user"`
	// TotalPrice is the whole-checkout total copied onto every vendor order.
	TotalPrice     float64     `json:"totalPrice" bson:"total_price"`
	VendorSubtotal float64     `json:"vendorSubtotal" bson:"vendor_subtotal"`
	PaymentInfo    PaymentInfo `json:"paymentInfo" bson:"payment_info"`
	Status         string      `json:"status" bson:"status"`
	PaidAt         time.Time   `json:"paidAt" bson:"paid_at"`
	DeliveredAt    *time.Time  `json:"deliveredAt,omitempty" bson:"delivered_at,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" bson:"created_at"`
}

// Checkout is the client-submitted bundle that the order split consumes.
type Checkout struct {
	Cart            []CartLine      `json:"cart" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	User            UserRef         `json:"user"`
	TotalPrice      float64         `json:"totalPrice" binding:"required,gt=0"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
}
