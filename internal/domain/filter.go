package domain

import (
	"time"

	"github.com/google/uuid"
)

// PartyFilter is the declarative filter object for party listings. Every
// field is optional; an absent field or an empty slice contributes no
// predicate. Slice facets match rows whose stored tag list intersects the
// requested tags; distinct facets are combined with AND.
type PartyFilter struct {
	WorkTypes     []string `json:"workTypes"`
	Colors        []string `json:"colors"`
	Sizes         []string `json:"sizes"`
	PaymentCycles []string `json:"paymentCycles"`
	Ranges        []string `json:"ranges"`

	// Search expands into a case-insensitive substring OR across name,
	// company, mobile and tax id.
	Search string `json:"search"`

	// OrderStage is not a party column; filtering by it joins the party's
	// orders and deduplicates by party id.
	OrderStage string `json:"orderStage"`
}

// OrderFilter is the declarative filter object for order listings.
type OrderFilter struct {
	Types      []string   `json:"types"`
	Samples    []string   `json:"samples"`
	Stages     []string   `json:"stages"`
	TargetFrom *time.Time `json:"targetFrom"`
	TargetTo   *time.Time `json:"targetTo"`
	Search     string     `json:"search"`
}

// ProductFilter is the declarative filter object for product listings.
type ProductFilter struct {
	SupplierID *uuid.UUID `json:"supplierId"`
	Ranges     []string   `json:"ranges"`
	Categories []string   `json:"categories"`
	Colors     []string   `json:"colors"`
	Sizes      []string   `json:"sizes"`
	Search     string     `json:"search"`
}

// SalesFilter drives the cross-entity sales aggregation. Side is required for
// a non-empty result; PartyIDs restricts the anchored side's records. A
// from-only or to-only target date bound is a one-sided, inclusive range.
type SalesFilter struct {
	Side       SalesSide   `json:"type"`
	PartyIDs   []uuid.UUID `json:"id"`
	OrderType  string      `json:"orderType"`
	Stage      string      `json:"stage"`
	TargetFrom *time.Time  `json:"targetFrom"`
	TargetTo   *time.Time  `json:"targetTo"`
	Search     string      `json:"search"`
}
