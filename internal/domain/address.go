package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address is the physical location owned by exactly one party.
type Address struct {
	ID        uuid.UUID `json:"id"`
	PartyKind PartyKind `json:"partyKind"`
	Floor     string    `json:"floor,omitempty"`
	Plot      string    `json:"plot,omitempty"`
	Society   string    `json:"society,omitempty"`
	Lane      string    `json:"lane,omitempty"`
	Address   string    `json:"address,omitempty"`
	Area      string    `json:"area,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Pincode   string    `json:"pincode,omitempty"`
	MapLink   string    `json:"mapLink,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddressPatch carries a partial address update. Nil fields are left
// untouched.
type AddressPatch struct {
	Floor   *string `json:"floor"`
	Plot    *string `json:"plot"`
	Society *string `json:"society"`
	Lane    *string `json:"lane"`
	Address *string `json:"address"`
	Area    *string `json:"area"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Pincode *string `json:"pincode"`
	MapLink *string `json:"mapLink"`
}

// Area is a small lookup entity normalizing the free-text area field on
// customer addresses. Created lazily the first time a new name is submitted.
type Area struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
