package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/query"
)

const orderColumns = "o.id, o.customer_id, o.supplier_id, o.order_type, o.sample, o.stage, o.description, o.product_name, o.target_date, o.gallery, o.created_at, o.updated_at"

type orderRepository struct {
	db DB
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	gallery, err := json.Marshal(emptyIfNil(order.Gallery))
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal order gallery: %w", err)
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (customer_id, supplier_id, order_type, sample, stage, description, product_name, target_date, gallery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+strings.ReplaceAll(orderColumns, "o.", ""),
		order.CustomerID, order.SupplierID, order.OrderType, order.Sample, order.Stage,
		order.Description, order.ProductName, order.TargetDate, gallery,
	)
	created, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var order domain.Order
	err := readRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders o WHERE o.id = $1", id)
		var scanErr error
		order, scanErr = scanOrder(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.NotFoundf("order %s", id)
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter, limit, offset int) ([]domain.Order, int, error) {
	countSQL, countArgs, dataSQL, dataArgs := buildOrderListSQL(filter, limit, offset)

	var (
		orders []domain.Order
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readRetry(gctx, func() error {
			rows, err := r.db.Query(gctx, dataSQL, dataArgs...)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			defer rows.Close()
			page := make([]domain.Order, 0, limit)
			for rows.Next() {
				order, err := scanOrder(rows)
				if err != nil {
					return fmt.Errorf("scan order: %w", err)
				}
				page = append(page, order)
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("iterate orders: %w", err)
			}
			orders = page
			return nil
		})
	})
	g.Go(func() error {
		return readRetry(gctx, func() error {
			if err := r.db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
				return fmt.Errorf("count orders: %w", err)
			}
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// buildOrderListSQL derives both statements from one predicate set.
func buildOrderListSQL(filter domain.OrderFilter, limit, offset int) (countSQL string, countArgs []any, dataSQL string, dataArgs []any) {
	predicates := query.ComposeOrder(filter)
	where := predicates.WhereClause()

	countSQL = "SELECT COUNT(*) FROM orders o " + where
	countArgs = predicates.Args()

	builder := predicates.Builder()
	dataSQL = fmt.Sprintf(
		"SELECT %s FROM orders o %s ORDER BY o.created_at DESC, o.id DESC LIMIT %s OFFSET %s",
		orderColumns, where, builder.Arg(limit), builder.Arg(offset),
	)
	dataArgs = builder.Args()
	return countSQL, countArgs, dataSQL, dataArgs
}

func (r *orderRepository) Update(ctx context.Context, order domain.Order) (domain.Order, error) {
	gallery, err := json.Marshal(emptyIfNil(order.Gallery))
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal order gallery: %w", err)
	}
	row := r.db.QueryRow(ctx, `
		UPDATE orders SET
			customer_id = $2, supplier_id = $3, order_type = $4, sample = $5,
			stage = $6, description = $7, product_name = $8, target_date = $9,
			gallery = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+strings.ReplaceAll(orderColumns, "o.", ""),
		order.ID, order.CustomerID, order.SupplierID, order.OrderType, order.Sample,
		order.Stage, order.Description, order.ProductName, order.TargetDate, gallery,
	)
	updated, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.NotFoundf("order %s", order.ID)
		}
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}
	return updated, nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	row := r.db.QueryRow(ctx, "DELETE FROM orders WHERE id = $1 RETURNING "+strings.ReplaceAll(orderColumns, "o.", ""), id)
	deleted, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.NotFoundf("order %s", id)
		}
		return domain.Order{}, fmt.Errorf("delete order: %w", err)
	}
	return deleted, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order   domain.Order
		gallery []byte
	)
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.SupplierID, &order.OrderType, &order.Sample,
		&order.Stage, &order.Description, &order.ProductName, &order.TargetDate,
		&gallery, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(gallery, &order.Gallery); err != nil {
		return domain.Order{}, fmt.Errorf("decode gallery for order %s: %w", order.ID, err)
	}
	return order, nil
}
