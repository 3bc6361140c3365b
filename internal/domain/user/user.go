package user

import (
	"time"

	"marketplace/internal/domain/media"
)

const RoleUser = "user"

type User struct {
	ID           string      `json:"_id" bson:"_id"`
	Name         string      `json:"name" bson:"name"`
	Email        string      `json:"email" bson:"email"`
	PasswordHash string      `json:"-" bson:"password_hash"`
	PhoneNumber  string      `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
	Addresses    []Address   `json:"addresses" bson:"addresses"`
	Role         string      `json:"role" bson:"role"`
	Avatar       media.Image `json:"avatar" bson:"avatar"`
	CreatedAt    time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updated_at"`
}

type Address struct {
	ID          string `json:"_id" bson:"_id"`
	Country     string `json:"country" bson:"country"`
	City        string `json:"city" bson:"city"`
	Address1    string `json:"address1" bson:"address1"`
	Address2    string `json:"address2,omitempty" bson:"address2,omitempty"`
	ZipCode     string `json:"zipCode" bson:"zip_code"`
	AddressType string `json:"addressType" bson:"address_type"`
}

// AddressByType returns the index of the address with the given type, or -1.
func (u *User) AddressByType(addressType string) int {
	for i, a := range u.Addresses {
		if a.AddressType == addressType {
			return i
		}
	}
	return -1
}

func (u *User) AddressByID(id string) int {
	for i, a := range u.Addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}
