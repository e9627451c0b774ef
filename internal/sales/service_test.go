package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
)

type fakeQuerier struct {
	rows  []domain.SaleRow
	total int
	calls int
}

func (f *fakeQuerier) Query(_ context.Context, _ domain.SalesFilter, _, _ int) ([]domain.SaleRow, int, error) {
	f.calls++
	return f.rows, f.total, nil
}

type fakeAddressRepo struct {
	addresses map[uuid.UUID]domain.Address
	calls     int
	lastIDs   []uuid.UUID
}

func (f *fakeAddressRepo) Create(_ context.Context, a domain.Address) (domain.Address, error) {
	return a, nil
}

func (f *fakeAddressRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Address, error) {
	if a, ok := f.addresses[id]; ok {
		return a, nil
	}
	return domain.Address{}, domain.NotFoundf("address %s", id)
}

func (f *fakeAddressRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Address, error) {
	f.calls++
	f.lastIDs = append([]uuid.UUID(nil), ids...)
	result := make(map[uuid.UUID]domain.Address, len(ids))
	for _, id := range ids {
		if a, ok := f.addresses[id]; ok {
			result[id] = a
		}
	}
	return result, nil
}

func (f *fakeAddressRepo) Update(_ context.Context, id uuid.UUID, _ domain.AddressPatch) (domain.Address, error) {
	return f.addresses[id], nil
}

func (f *fakeAddressRepo) Delete(_ context.Context, id uuid.UUID) (domain.Address, error) {
	return f.addresses[id], nil
}

func strPtr(s string) *string { return &s }

func TestAggregateBatchesAddressResolution(t *testing.T) {
	customerAddr := uuid.New()
	supplierAddrA := uuid.New()
	supplierAddrB := uuid.New()

	// 20 rows sharing three distinct addresses across both sides.
	rows := make([]domain.SaleRow, 20)
	for i := range rows {
		rows[i] = domain.SaleRow{
			OrderID:           uuid.New(),
			OrderType:         "bulk",
			Stage:             "dispatched",
			CustomerAddressID: &customerAddr,
		}
		if i%2 == 0 {
			rows[i].SupplierAddressID = &supplierAddrA
		} else {
			rows[i].SupplierAddressID = &supplierAddrB
		}
	}

	repo := &fakeAddressRepo{addresses: map[uuid.UUID]domain.Address{
		customerAddr:  {ID: customerAddr, City: "Surat"},
		supplierAddrA: {ID: supplierAddrA, City: "Mumbai"},
		supplierAddrB: {ID: supplierAddrB, City: "Jaipur"},
	}}
	querier := &fakeQuerier{rows: rows, total: 100}
	service := NewService(querier, repo, zap.NewNop())

	result, err := service.Aggregate(context.Background(),
		domain.SalesFilter{Side: domain.SalesSideCustomer}, 1, 20)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if repo.calls != 1 {
		t.Fatalf("expected exactly one address batch call, got %d", repo.calls)
	}
	if len(repo.lastIDs) != 3 {
		t.Fatalf("expected 3 distinct address ids in the batch, got %d", len(repo.lastIDs))
	}

	for i, row := range result.Data {
		if row.CustomerAddress == nil || row.CustomerAddress.City != "Surat" {
			t.Fatalf("row %d missing customer address: %#v", i, row.CustomerAddress)
		}
		if row.SupplierAddress == nil {
			t.Fatalf("row %d missing supplier address", i)
		}
	}
	if result.Metadata.Total != 100 || result.Metadata.Page != 1 || result.Metadata.Limit != 20 {
		t.Fatalf("metadata mismatch: %+v", result.Metadata)
	}
}

func TestAggregateKeepsRowsWithNullSides(t *testing.T) {
	addr := uuid.New()
	rows := []domain.SaleRow{
		{
			OrderID:           uuid.New(),
			OrderType:         "bulk",
			Stage:             "sampling",
			CustomerName:      strPtr("Meera Textiles"),
			CustomerAddressID: &addr,
		},
		{
			// Supplier was deleted; its side stays null.
			OrderID:   uuid.New(),
			OrderType: "bulk",
			Stage:     "sampling",
		},
	}
	repo := &fakeAddressRepo{addresses: map[uuid.UUID]domain.Address{
		addr: {ID: addr, City: "Surat"},
	}}
	service := NewService(&fakeQuerier{rows: rows, total: 2}, repo, zap.NewNop())

	result, err := service.Aggregate(context.Background(),
		domain.SalesFilter{Side: domain.SalesSideCustomer}, 1, 10)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if len(result.Data) != 2 {
		t.Fatalf("null-sided rows must be kept, got %d rows", len(result.Data))
	}
	if result.Data[1].CustomerAddress != nil || result.Data[1].SupplierAddress != nil {
		t.Fatalf("fully null row must stay null: %#v", result.Data[1])
	}
}

func TestAggregateEmptySideReturnsEmptyResult(t *testing.T) {
	querier := &fakeQuerier{}
	service := NewService(querier, &fakeAddressRepo{}, zap.NewNop())

	result, err := service.Aggregate(context.Background(), domain.SalesFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("missing side is policy, not an error: %v", err)
	}
	if len(result.Data) != 0 || result.Metadata.Total != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if querier.calls != 0 {
		t.Fatalf("no query should run without a side, got %d calls", querier.calls)
	}
}

func TestAggregateRejectsUnknownSide(t *testing.T) {
	service := NewService(&fakeQuerier{}, &fakeAddressRepo{}, zap.NewNop())

	_, err := service.Aggregate(context.Background(),
		domain.SalesFilter{Side: "vendor"}, 1, 20)
	if err == nil {
		t.Fatal("expected validation error for unknown side")
	}
}

func TestAggregateValidatesPagination(t *testing.T) {
	service := NewService(&fakeQuerier{}, &fakeAddressRepo{}, zap.NewNop())

	if _, err := service.Aggregate(context.Background(),
		domain.SalesFilter{Side: domain.SalesSideCustomer}, 0, 20); err == nil {
		t.Fatal("expected error for page 0")
	}
	if _, err := service.Aggregate(context.Background(),
		domain.SalesFilter{Side: domain.SalesSideCustomer}, 1, 0); err == nil {
		t.Fatal("expected error for limit 0")
	}
}
