package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/repository"
)

// Service assembles denormalized sale rows for the cross-entity listing and
// for reports.
type Service struct {
	querier   repository.SalesQuerier
	addresses repository.AddressRepository
	logger    *zap.Logger
}

// NewService creates the sales aggregator.
func NewService(querier repository.SalesQuerier, addresses repository.AddressRepository, logger *zap.Logger) *Service {
	return &Service{querier: querier, addresses: addresses, logger: logger}
}

// Aggregate joins orders to both parties, resolves every address id on the
// page in one batch, and re-attaches each side's address. A filter without a
// side returns an empty result: the join has no natural anchor, so this is
// policy, not an error.
func (s *Service) Aggregate(ctx context.Context, filter domain.SalesFilter, page, limit int) (domain.SalesResult, error) {
	if limit < 1 {
		return domain.SalesResult{}, domain.Validationf("limit must be at least 1")
	}
	if page < 1 {
		return domain.SalesResult{}, domain.Validationf("page must be at least 1")
	}
	if filter.Side != domain.SalesSideCustomer && filter.Side != domain.SalesSideSupplier {
		if filter.Side != "" {
			return domain.SalesResult{}, domain.Validationf("unknown sales side %q", filter.Side)
		}
		return domain.SalesResult{
			Data:     []domain.SaleRow{},
			Metadata: domain.SalesMetadata{Total: 0, Limit: limit, Page: page},
		}, nil
	}

	offset := (page - 1) * limit
	rows, total, err := s.querier.Query(ctx, filter, limit, offset)
	if err != nil {
		return domain.SalesResult{}, err
	}

	if err := s.attachAddresses(ctx, rows); err != nil {
		return domain.SalesResult{}, err
	}

	s.logger.Debug("aggregated sales page",
		zap.String("side", string(filter.Side)),
		zap.Int("rows", len(rows)),
		zap.Int("total", total))

	return domain.SalesResult{
		Data:     rows,
		Metadata: domain.SalesMetadata{Total: total, Limit: limit, Page: page},
	}, nil
}

// attachAddresses resolves the distinct non-null union of both sides'
// address ids in a single batch call.
func (s *Service) attachAddresses(ctx context.Context, rows []domain.SaleRow) error {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(rows))
	collect := func(id *uuid.UUID) {
		if id == nil {
			return
		}
		if _, dup := seen[*id]; dup {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	for i := range rows {
		collect(rows[i].CustomerAddressID)
		collect(rows[i].SupplierAddressID)
	}

	resolved, err := s.addresses.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve sale addresses: %w", err)
	}

	for i := range rows {
		if id := rows[i].CustomerAddressID; id != nil {
			if address, ok := resolved[*id]; ok {
				addressCopy := address
				rows[i].CustomerAddress = &addressCopy
			}
		}
		if id := rows[i].SupplierAddressID; id != nil {
			if address, ok := resolved[*id]; ok {
				addressCopy := address
				rows[i].SupplierAddress = &addressCopy
			}
		}
	}
	return nil
}
