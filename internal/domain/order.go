package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order references zero-or-one customer and zero-or-one supplier. Deleting a
// party nulls the reference; the order itself is kept as sales history.
type Order struct {
	ID          uuid.UUID  `json:"id"`
	CustomerID  *uuid.UUID `json:"customerId"`
	SupplierID  *uuid.UUID `json:"supplierId"`
	OrderType   string     `json:"type"`
	Sample      string     `json:"sample,omitempty"`
	Stage       string     `json:"stage"`
	Description string     `json:"description,omitempty"`
	ProductName string     `json:"productName,omitempty"`
	TargetDate  *time.Time `json:"targetDate"`
	Gallery     []MediaRef `json:"gallery"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
