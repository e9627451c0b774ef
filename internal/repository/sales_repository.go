package repository

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/query"
)

type salesRepository struct {
	db DB
}

// NewSalesRepository creates the order/customer/supplier join querier.
func NewSalesRepository(db DB) SalesQuerier {
	return &salesRepository{db: db}
}

// Query left-joins orders to both parties and projects each side's fields and
// address id. Orders whose party was deleted keep their row with nulls on
// that side. The bounded data query and the unbounded count query share one
// predicate set and run concurrently; if either fails the call fails.
func (r *salesRepository) Query(ctx context.Context, filter domain.SalesFilter, limit, offset int) ([]domain.SaleRow, int, error) {
	countSQL, countArgs, dataSQL, dataArgs := buildSalesQuerySQL(filter, limit, offset)

	var (
		sales []domain.SaleRow
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readRetry(gctx, func() error {
			rows, err := r.db.Query(gctx, dataSQL, dataArgs...)
			if err != nil {
				return fmt.Errorf("query sales: %w", err)
			}
			defer rows.Close()
			page := make([]domain.SaleRow, 0, limit)
			for rows.Next() {
				var row domain.SaleRow
				if err := rows.Scan(
					&row.OrderID, &row.OrderType, &row.Sample, &row.Stage, &row.Description,
					&row.ProductName, &row.TargetDate, &row.CreatedAt,
					&row.CustomerID, &row.CustomerName, &row.CustomerCompany, &row.CustomerMobile, &row.CustomerAddressID,
					&row.SupplierID, &row.SupplierName, &row.SupplierCompany, &row.SupplierMobile, &row.SupplierAddressID,
				); err != nil {
					return fmt.Errorf("scan sale row: %w", err)
				}
				page = append(page, row)
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("iterate sale rows: %w", err)
			}
			sales = page
			return nil
		})
	})
	g.Go(func() error {
		return readRetry(gctx, func() error {
			if err := r.db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
				return fmt.Errorf("count sales: %w", err)
			}
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// buildSalesQuerySQL derives both statements from one predicate set.
func buildSalesQuerySQL(filter domain.SalesFilter, limit, offset int) (countSQL string, countArgs []any, dataSQL string, dataArgs []any) {
	predicates := query.ComposeSales(filter)

	from := `FROM orders o
		LEFT JOIN parties c ON c.id = o.customer_id
		LEFT JOIN parties s ON s.id = o.supplier_id `
	where := predicates.WhereClause()

	countSQL = "SELECT COUNT(*) " + from + where
	countArgs = predicates.Args()

	builder := predicates.Builder()
	dataSQL = fmt.Sprintf(`SELECT
			o.id, o.order_type, o.sample, o.stage, o.description, o.product_name, o.target_date, o.created_at,
			c.id, c.name, c.company, c.mobile, c.address_id,
			s.id, s.name, s.company, s.mobile, s.address_id
		%s%s ORDER BY o.created_at DESC, o.id DESC LIMIT %s OFFSET %s`,
		from, where, builder.Arg(limit), builder.Arg(offset),
	)
	dataArgs = builder.Args()
	return countSQL, countArgs, dataSQL, dataArgs
}
