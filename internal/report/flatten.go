package report

import (
	"strings"
	"time"

	"textile-backoffice/internal/domain"
)

// The flattener collapses nested records onto one spreadsheet row each: tag
// lists become comma-joined cells, media refs are reduced to their display
// names, and absent values render as empty cells.

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func joinMediaNames(refs []domain.MediaRef) string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.DisplayName != "" {
			names = append(names, ref.DisplayName)
		}
	}
	return strings.Join(names, ", ")
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format("2006-01-02")
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func flattenAddress(address *domain.Address) string {
	if address == nil {
		return ""
	}
	parts := []string{
		address.Floor, address.Plot, address.Society, address.Lane,
		address.Address, address.Area, address.City, address.State,
		address.Pincode,
	}
	filled := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filled = append(filled, part)
		}
	}
	return strings.Join(filled, ", ")
}

// PartyHeaders is the column order of a party export sheet.
var PartyHeaders = []string{
	"Name", "Company", "Mobile", "Tax ID",
	"Work Types", "Colors", "Sizes", "Payment Cycle", "Range",
	"Address", "Area", "City", "Pincode",
	"Documents", "Gallery", "Notes", "Created",
}

// FlattenParty renders one party as one row in PartyHeaders order.
func FlattenParty(party domain.Party) []any {
	var area, city, pincode string
	if party.Address != nil {
		area = party.Address.Area
		city = party.Address.City
		pincode = party.Address.Pincode
	}
	return []any{
		party.Name,
		party.Company,
		party.Mobile,
		party.TaxID,
		joinTags(party.Facets.WorkTypes),
		joinTags(party.Facets.Colors),
		joinTags(party.Facets.Sizes),
		party.Facets.PaymentCycle,
		party.Facets.Range,
		flattenAddress(party.Address),
		area,
		city,
		pincode,
		joinMediaNames(party.Documents),
		joinMediaNames(party.Gallery),
		party.Notes,
		party.CreatedAt.Format("2006-01-02"),
	}
}

// SaleHeaders is the column order of a sales export sheet.
var SaleHeaders = []string{
	"Order ID", "Type", "Sample", "Stage", "Product", "Description",
	"Target Date", "Customer", "Customer Company", "Customer Mobile",
	"Customer Address", "Supplier", "Supplier Company", "Supplier Mobile",
	"Supplier Address", "Created",
}

// FlattenSale renders one sale row in SaleHeaders order.
func FlattenSale(row domain.SaleRow) []any {
	return []any{
		row.OrderID.String(),
		row.OrderType,
		row.Sample,
		row.Stage,
		row.ProductName,
		row.Description,
		formatDate(row.TargetDate),
		derefString(row.CustomerName),
		derefString(row.CustomerCompany),
		derefString(row.CustomerMobile),
		flattenAddress(row.CustomerAddress),
		derefString(row.SupplierName),
		derefString(row.SupplierCompany),
		derefString(row.SupplierMobile),
		flattenAddress(row.SupplierAddress),
		row.CreatedAt.Format("2006-01-02"),
	}
}
