package domain

import (
	"time"

	"github.com/google/uuid"
)

// SalesSide anchors the cross-entity aggregation to one party role. Without a
// side the order join has no natural anchor and the aggregation returns empty.
type SalesSide string

const (
	SalesSideCustomer SalesSide = "customer"
	SalesSideSupplier SalesSide = "supplier"
)

// SaleRow is a denormalized projection of one order joined with its customer
// and supplier. Referential nulls are valid rows: a deleted party leaves its
// side of the row null rather than dropping the row.
type SaleRow struct {
	OrderID     uuid.UUID  `json:"orderId"`
	OrderType   string     `json:"type"`
	Sample      string     `json:"sample,omitempty"`
	Stage       string     `json:"stage"`
	Description string     `json:"description,omitempty"`
	ProductName string     `json:"productName,omitempty"`
	TargetDate  *time.Time `json:"targetDate"`
	CreatedAt   time.Time  `json:"createdAt"`

	CustomerID        *uuid.UUID `json:"customerId"`
	CustomerName      *string    `json:"customerName"`
	CustomerCompany   *string    `json:"customerCompany"`
	CustomerMobile    *string    `json:"customerMobile"`
	CustomerAddressID *uuid.UUID `json:"-"`
	CustomerAddress   *Address   `json:"customerAddress"`

	SupplierID        *uuid.UUID `json:"supplierId"`
	SupplierName      *string    `json:"supplierName"`
	SupplierCompany   *string    `json:"supplierCompany"`
	SupplierMobile    *string    `json:"supplierMobile"`
	SupplierAddressID *uuid.UUID `json:"-"`
	SupplierAddress   *Address   `json:"supplierAddress"`
}

// SalesMetadata echoes the pagination of a sales aggregation.
type SalesMetadata struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

// SalesResult is the aggregation response shape.
type SalesResult struct {
	Data     []SaleRow     `json:"data"`
	Metadata SalesMetadata `json:"metadata"`
}
