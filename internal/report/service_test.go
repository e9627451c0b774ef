package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/sales"
)

type pagedPartyRepo struct {
	all []domain.Party
}

func (f *pagedPartyRepo) Create(_ context.Context, p domain.Party) (domain.Party, error) {
	return p, nil
}

func (f *pagedPartyRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Party, error) {
	return domain.Party{}, domain.NotFoundf("party %s", id)
}

func (f *pagedPartyRepo) List(_ context.Context, _ domain.PartyKind, _ domain.PartyFilter, limit, offset int) ([]domain.Party, int, error) {
	if offset >= len(f.all) {
		return nil, len(f.all), nil
	}
	end := offset + limit
	if end > len(f.all) {
		end = len(f.all)
	}
	return f.all[offset:end], len(f.all), nil
}

func (f *pagedPartyRepo) Update(_ context.Context, p domain.Party) (domain.Party, error) {
	return p, nil
}

func (f *pagedPartyRepo) Delete(_ context.Context, id uuid.UUID) (domain.Party, error) {
	return domain.Party{}, nil
}

type emptyQuerier struct{}

func (emptyQuerier) Query(_ context.Context, _ domain.SalesFilter, _, _ int) ([]domain.SaleRow, int, error) {
	return nil, 0, nil
}

type noAddresses struct{}

func (noAddresses) Create(_ context.Context, a domain.Address) (domain.Address, error) {
	return a, nil
}

func (noAddresses) GetByID(_ context.Context, id uuid.UUID) (domain.Address, error) {
	return domain.Address{}, domain.NotFoundf("address %s", id)
}

func (noAddresses) GetByIDs(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]domain.Address, error) {
	return map[uuid.UUID]domain.Address{}, nil
}

func (noAddresses) Update(_ context.Context, _ uuid.UUID, _ domain.AddressPatch) (domain.Address, error) {
	return domain.Address{}, nil
}

func (noAddresses) Delete(_ context.Context, _ uuid.UUID) (domain.Address, error) {
	return domain.Address{}, nil
}

func TestExportPartiesDrainsEveryPage(t *testing.T) {
	// More rows than one export batch, to force paging.
	all := make([]domain.Party, exportBatchSize+5)
	for i := range all {
		all[i] = domain.Party{ID: uuid.New(), Kind: domain.PartyKindCustomer, Name: "Customer"}
	}
	repo := &pagedPartyRepo{all: all}
	salesService := sales.NewService(emptyQuerier{}, noAddresses{}, zap.NewNop())
	service := NewService(repo, salesService, zap.NewNop())

	export, err := service.ExportParties(context.Background(),
		domain.PartyKindCustomer, domain.PartyFilter{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Customers")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != len(all)+1 {
		t.Fatalf("expected header + %d rows, got %d", len(all), len(rows))
	}
}

func TestExportPartiesRejectsUnknownKind(t *testing.T) {
	salesService := sales.NewService(emptyQuerier{}, noAddresses{}, zap.NewNop())
	service := NewService(&pagedPartyRepo{}, salesService, zap.NewNop())

	if _, err := service.ExportParties(context.Background(), "vendor", domain.PartyFilter{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExportSalesEmptySideYieldsEmptySheet(t *testing.T) {
	salesService := sales.NewService(emptyQuerier{}, noAddresses{}, zap.NewNop())
	service := NewService(&pagedPartyRepo{}, salesService, zap.NewNop())

	export, err := service.ExportSales(context.Background(), domain.SalesFilter{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sales")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d", len(rows))
	}
}
