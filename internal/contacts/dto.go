package contacts

import (
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

// ContactDTO is the API view of a delivery contact.
type ContactDTO struct {
	ID        uint64 `json:"id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Structure string `json:"structure"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone"`
}

// CreateContactRequest is the body of POST /user/contact.
type CreateContactRequest struct {
	City      string `json:"city" validate:"required,max=50"`
	Street    string `json:"street" validate:"required,max=100"`
	House     string `json:"house" validate:"max=15"`
	Structure string `json:"structure" validate:"max=15"`
	Building  string `json:"building" validate:"max=15"`
	Apartment string `json:"apartment" validate:"max=15"`
	Phone     string `json:"phone" validate:"required,max=20"`
}

// UpdateContactRequest is a partial update; nil fields are left as stored.
type UpdateContactRequest struct {
	ID        types.LooseID `json:"id"`
	City      *string       `json:"city,omitempty" validate:"omitempty,max=50"`
	Street    *string       `json:"street,omitempty" validate:"omitempty,max=100"`
	House     *string       `json:"house,omitempty" validate:"omitempty,max=15"`
	Structure *string       `json:"structure,omitempty" validate:"omitempty,max=15"`
	Building  *string       `json:"building,omitempty" validate:"omitempty,max=15"`
	Apartment *string       `json:"apartment,omitempty" validate:"omitempty,max=15"`
	Phone     *string       `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// DeleteContactsRequest carries the comma separated ids to remove.
type DeleteContactsRequest struct {
	Items string `json:"items"`
}

func FromModel(c models.Contact) ContactDTO {
	return ContactDTO{
		ID:        c.ID,
		City:      c.City,
		Street:    c.Street,
		House:     c.House,
		Structure: c.Structure,
		Building:  c.Building,
		Apartment: c.Apartment,
		Phone:     c.Phone,
	}
}
