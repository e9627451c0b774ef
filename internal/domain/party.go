package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PartyKind distinguishes the two party roles. Customers and suppliers share
// one table and one shape; the kind is a discriminator column.
type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer"
	PartyKindSupplier PartyKind = "supplier"
)

// ParsePartyKind normalizes a raw kind string.
func ParsePartyKind(raw string) (PartyKind, bool) {
	switch PartyKind(strings.ToLower(strings.TrimSpace(raw))) {
	case PartyKindCustomer:
		return PartyKindCustomer, true
	case PartyKindSupplier:
		return PartyKindSupplier, true
	}
	return "", false
}

// PartyFacets holds the filterable attributes of a party. Tag lists are
// ordered; single-valued facets are plain strings. Stored as one JSONB column.
type PartyFacets struct {
	WorkTypes    []string `json:"workTypes,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	Sizes        []string `json:"sizes,omitempty"`
	PaymentCycle string   `json:"paymentCycle,omitempty"`
	Range        string   `json:"range,omitempty"`
}

// Party represents a customer or supplier. A party owns exactly one address,
// created and deleted together with it.
type Party struct {
	ID        uuid.UUID   `json:"id"`
	Kind      PartyKind   `json:"kind"`
	Name      string      `json:"name"`
	Company   string      `json:"company,omitempty"`
	Mobile    string      `json:"mobile,omitempty"`
	TaxID     string      `json:"taxId,omitempty"`
	Facets    PartyFacets `json:"facets"`
	Documents []MediaRef  `json:"documents"`
	Gallery   []MediaRef  `json:"gallery"`
	Notes     string      `json:"notes,omitempty"`
	AddressID uuid.UUID   `json:"addressId"`
	Address   *Address    `json:"address,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// MediaRef points at a stored blob by opaque handle. The handle is never
// interpreted here; it only round-trips to the blob store.
type MediaRef struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Note        string `json:"note,omitempty"`
	URL         string `json:"url,omitempty"`
}

// MediaHandles extracts the handle set of a ref list.
func MediaHandles(refs []MediaRef) []string {
	handles := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Handle != "" {
			handles = append(handles, ref.Handle)
		}
	}
	return handles
}
