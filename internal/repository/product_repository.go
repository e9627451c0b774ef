package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/query"
)

const productColumns = "p.id, p.supplier_id, p.name, p.facets, p.images, p.created_at, p.updated_at"

type productRepository struct {
	db DB
}

// NewProductRepository creates a product repository.
func NewProductRepository(db DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	facets, images, err := marshalProductJSON(product)
	if err != nil {
		return domain.Product{}, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (supplier_id, name, facets, images)
		VALUES ($1, $2, $3, $4)
		RETURNING `+aliasless(productColumns),
		product.SupplierID, product.Name, facets, images,
	)
	created, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var product domain.Product
	err := readRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = $1", id)
		var scanErr error
		product, scanErr = scanProduct(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.NotFoundf("product %s", id)
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, limit, offset int) ([]domain.Product, int, error) {
	countSQL, countArgs, dataSQL, dataArgs := buildProductListSQL(filter, limit, offset)

	var (
		products []domain.Product
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readRetry(gctx, func() error {
			rows, err := r.db.Query(gctx, dataSQL, dataArgs...)
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}
			defer rows.Close()
			page := make([]domain.Product, 0, limit)
			for rows.Next() {
				product, err := scanProduct(rows)
				if err != nil {
					return fmt.Errorf("scan product: %w", err)
				}
				page = append(page, product)
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("iterate products: %w", err)
			}
			products = page
			return nil
		})
	})
	g.Go(func() error {
		return readRetry(gctx, func() error {
			if err := r.db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
				return fmt.Errorf("count products: %w", err)
			}
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// buildProductListSQL derives both statements from one predicate set.
func buildProductListSQL(filter domain.ProductFilter, limit, offset int) (countSQL string, countArgs []any, dataSQL string, dataArgs []any) {
	predicates := query.ComposeProduct(filter)
	where := predicates.WhereClause()

	countSQL = "SELECT COUNT(*) FROM products p " + where
	countArgs = predicates.Args()

	builder := predicates.Builder()
	dataSQL = fmt.Sprintf(
		"SELECT %s FROM products p %s ORDER BY p.created_at DESC, p.id DESC LIMIT %s OFFSET %s",
		productColumns, where, builder.Arg(limit), builder.Arg(offset),
	)
	dataArgs = builder.Args()
	return countSQL, countArgs, dataSQL, dataArgs
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	facets, images, err := marshalProductJSON(product)
	if err != nil {
		return domain.Product{}, err
	}
	row := r.db.QueryRow(ctx, `
		UPDATE products SET name = $2, facets = $3, images = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+aliasless(productColumns),
		product.ID, product.Name, facets, images,
	)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.NotFoundf("product %s", product.ID)
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row := r.db.QueryRow(ctx, "DELETE FROM products WHERE id = $1 RETURNING "+aliasless(productColumns), id)
	deleted, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.NotFoundf("product %s", id)
		}
		return domain.Product{}, fmt.Errorf("delete product: %w", err)
	}
	return deleted, nil
}

func marshalProductJSON(product domain.Product) (facets, images []byte, err error) {
	if facets, err = json.Marshal(product.Facets); err != nil {
		return nil, nil, fmt.Errorf("marshal product facets: %w", err)
	}
	if images, err = json.Marshal(emptyIfNil(product.Images)); err != nil {
		return nil, nil, fmt.Errorf("marshal product images: %w", err)
	}
	return facets, images, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		product        domain.Product
		facets, images []byte
	)
	err := row.Scan(
		&product.ID, &product.SupplierID, &product.Name, &facets, &images,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	if err := json.Unmarshal(facets, &product.Facets); err != nil {
		return domain.Product{}, fmt.Errorf("decode facets for product %s: %w", product.ID, err)
	}
	if err := json.Unmarshal(images, &product.Images); err != nil {
		return domain.Product{}, fmt.Errorf("decode images for product %s: %w", product.ID, err)
	}
	return product, nil
}
