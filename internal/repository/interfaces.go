package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"textile-backoffice/internal/domain"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx, so the same repository code
// runs inside and outside a transaction.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AddressRepository owns address rows. GetByIDs is the batch resolution used
// by the listing executor and the sales aggregator; it issues exactly one
// query regardless of set size.
type AddressRepository interface {
	Create(ctx context.Context, address domain.Address) (domain.Address, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Address, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Address, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.AddressPatch) (domain.Address, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Address, error)
}

// PartyRepository stores customers and suppliers.
type PartyRepository interface {
	Create(ctx context.Context, party domain.Party) (domain.Party, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Party, error)
	List(ctx context.Context, kind domain.PartyKind, filter domain.PartyFilter, limit, offset int) ([]domain.Party, int, error)
	Update(ctx context.Context, party domain.Party) (domain.Party, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Party, error)
}

// OrderRepository stores orders.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter, limit, offset int) ([]domain.Order, int, error)
	Update(ctx context.Context, order domain.Order) (domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Order, error)
}

// ProductRepository stores products.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, limit, offset int) ([]domain.Product, int, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

// AreaRepository is the small lookup normalizing free-text areas.
// FindOrCreate is idempotent: repeated calls with the same name return the
// same id.
type AreaRepository interface {
	FindOrCreate(ctx context.Context, name string) (domain.Area, error)
	List(ctx context.Context) ([]domain.Area, error)
}

// SalesQuerier executes the order/customer/supplier join. Rows carry both
// sides' address ids; attaching the resolved addresses is the aggregator's
// job, not the querier's.
type SalesQuerier interface {
	Query(ctx context.Context, filter domain.SalesFilter, limit, offset int) ([]domain.SaleRow, int, error)
}
