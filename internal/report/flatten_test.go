package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"textile-backoffice/internal/domain"
)

func TestFlattenPartyCollapsesNestedFields(t *testing.T) {
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	party := domain.Party{
		Name:    "Meera Textiles",
		Company: "Meera & Co",
		Mobile:  "9876500000",
		Facets: domain.PartyFacets{
			WorkTypes:    []string{"weaving", "dyeing"},
			Colors:       []string{"indigo"},
			PaymentCycle: "net-30",
		},
		Documents: []domain.MediaRef{
			{Handle: "customers/abc-gst.pdf", DisplayName: "GST Certificate"},
			{Handle: "customers/def-pan.pdf", DisplayName: "PAN Card"},
		},
		Address: &domain.Address{
			Society: "Silk Market",
			Area:    "Ring Road",
			City:    "Surat",
			Pincode: "395002",
		},
		CreatedAt: created,
	}

	row := FlattenParty(party)
	if len(row) != len(PartyHeaders) {
		t.Fatalf("row width %d does not match headers %d", len(row), len(PartyHeaders))
	}
	if row[4] != "weaving, dyeing" {
		t.Fatalf("work types not joined: %v", row[4])
	}
	if row[13] != "GST Certificate, PAN Card" {
		t.Fatalf("documents should flatten to display names: %v", row[13])
	}
	if row[9] != "Silk Market, Ring Road, Surat, 395002" {
		t.Fatalf("address not flattened: %v", row[9])
	}
	if row[16] != "2024-05-10" {
		t.Fatalf("created date not formatted: %v", row[16])
	}
}

func TestFlattenPartyWithoutAddress(t *testing.T) {
	row := FlattenParty(domain.Party{Name: "Bare"})
	if row[9] != "" || row[10] != "" || row[11] != "" || row[12] != "" {
		t.Fatalf("missing address must render empty cells: %v", row[9:13])
	}
}

func TestFlattenSaleToleratesNullSides(t *testing.T) {
	target := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	name := "Ravi Mills"
	row := FlattenSale(domain.SaleRow{
		OrderID:      uuid.New(),
		OrderType:    "bulk",
		Stage:        "dispatched",
		TargetDate:   &target,
		CustomerName: &name,
	})

	if len(row) != len(SaleHeaders) {
		t.Fatalf("row width %d does not match headers %d", len(row), len(SaleHeaders))
	}
	if row[6] != "2024-06-01" {
		t.Fatalf("target date not formatted: %v", row[6])
	}
	if row[7] != "Ravi Mills" {
		t.Fatalf("customer name missing: %v", row[7])
	}
	// A deleted supplier leaves its cells empty, never panics.
	if row[11] != "" || row[14] != "" {
		t.Fatalf("null supplier must render empty cells: %v", row)
	}
}

func TestBuildWorkbookRoundTrip(t *testing.T) {
	data, err := BuildWorkbook("Customers", []string{"Name", "City"}, [][]any{
		{"Meera Textiles", "Surat"},
		{"Ravi Mills", "Jaipur"},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Customers")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][1] != "City" {
		t.Fatalf("header mismatch: %v", rows[0])
	}
	if rows[2][0] != "Ravi Mills" || rows[2][1] != "Jaipur" {
		t.Fatalf("data row mismatch: %v", rows[2])
	}
}
