package shop

import (
	"time"

	"marketplace/internal/domain/media"
)

const RoleSeller = "seller"

type Shop struct {
	ID           string      `json:"_id" bson:"_id"`
	Name         string      `json:"name" bson:"name"`
	Email        string      `json:"email" bson:"email"`
	PasswordHash string      `json:"-" bson:"password_hash"`
	Description  string      `json:"description,omitempty" bson:"description,omitempty"`
	Address      string      `json:"address" bson:"address"`
	PhoneNumber  string      `json:"phoneNumber" bson:"phone_number"`
	ZipCode      string      `json:"zipCode" bson:"zip_code"`
	Role         string      `json:"role" bson:"role"`
	Avatar       media.Image `json:"avatar" bson:"avatar"`
	CreatedAt    time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updated_at"`
}

// Summary is the denormalized copy of a shop embedded in its products.
type Summary struct {
	ID     string      `json:"_id" bson:"_id"`
	Name   string      `json:"name" bson:"name"`
	Avatar media.Image `json:"avatar" bson:"avatar"`
}

func (s Shop) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Avatar: s.Avatar}
}
