package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/repository"
	"textile-backoffice/internal/sales"
)

// exportBatchSize bounds the rows fetched per round trip while draining a
// filtered listing into a workbook.
const exportBatchSize = 500

// Service drains filtered listings into xlsx workbooks. Exports reuse the
// same filter objects as the listings so a report always matches what the
// screen showed.
type Service struct {
	parties repository.PartyRepository
	sales   *sales.Service
	logger  *zap.Logger
}

// NewService wires the report exporter.
func NewService(parties repository.PartyRepository, salesService *sales.Service, logger *zap.Logger) *Service {
	return &Service{parties: parties, sales: salesService, logger: logger}
}

// Export is a rendered workbook ready to stream.
type Export struct {
	FileName string
	Data     []byte
}

// ExportParties renders every party matching the filter into one sheet.
func (s *Service) ExportParties(ctx context.Context, kind domain.PartyKind, filter domain.PartyFilter) (Export, error) {
	if kind != domain.PartyKindCustomer && kind != domain.PartyKindSupplier {
		return Export{}, domain.Validationf("unknown party kind %q", kind)
	}

	var rows [][]any
	offset := 0
	for {
		batch, total, err := s.parties.List(ctx, kind, filter, exportBatchSize, offset)
		if err != nil {
			return Export{}, fmt.Errorf("export %ss: %w", kind, err)
		}
		for _, party := range batch {
			rows = append(rows, FlattenParty(party))
		}
		offset += len(batch)
		if len(batch) == 0 || offset >= total {
			break
		}
	}

	sheetName := "Customers"
	if kind == domain.PartyKindSupplier {
		sheetName = "Suppliers"
	}
	data, err := BuildWorkbook(sheetName, PartyHeaders, rows)
	if err != nil {
		return Export{}, err
	}

	s.logger.Info("party export built",
		zap.String("kind", string(kind)),
		zap.Int("rows", len(rows)))
	return Export{
		FileName: fmt.Sprintf("%ss-%s.xlsx", kind, time.Now().Format("2006-01-02")),
		Data:     data,
	}, nil
}

// ExportSales renders every sale row matching the filter into one sheet.
func (s *Service) ExportSales(ctx context.Context, filter domain.SalesFilter) (Export, error) {
	var rows [][]any
	page := 1
	for {
		result, err := s.sales.Aggregate(ctx, filter, page, exportBatchSize)
		if err != nil {
			return Export{}, fmt.Errorf("export sales: %w", err)
		}
		for _, row := range result.Data {
			rows = append(rows, FlattenSale(row))
		}
		if len(result.Data) == 0 || page*exportBatchSize >= result.Metadata.Total {
			break
		}
		page++
	}

	data, err := BuildWorkbook("Sales", SaleHeaders, rows)
	if err != nil {
		return Export{}, err
	}

	s.logger.Info("sales export built",
		zap.String("side", string(filter.Side)),
		zap.Int("rows", len(rows)))
	return Export{
		FileName: fmt.Sprintf("sales-%s.xlsx", time.Now().Format("2006-01-02")),
		Data:     data,
	}, nil
}
