package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductFacets mirrors PartyFacets with different cardinality per field:
// range and category are single-valued, colors and sizes are tag lists.
type ProductFacets struct {
	Range    string   `json:"range,omitempty"`
	Category string   `json:"category,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	Sizes    []string `json:"sizes,omitempty"`
}

// Product belongs to exactly one supplier; deleting the supplier cascades.
type Product struct {
	ID         uuid.UUID     `json:"id"`
	SupplierID uuid.UUID     `json:"supplierId"`
	Name       string        `json:"name"`
	Facets     ProductFacets `json:"facets"`
	Images     []MediaRef    `json:"images"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
