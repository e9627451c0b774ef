package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"textile-backoffice/internal/domain"
)

const addressColumns = "id, party_kind, floor, plot, society, lane, address, area, city, state, pincode, map_link, created_at, updated_at"

type addressRepository struct {
	db DB
}

// NewAddressRepository creates an address repository on the given executor.
func NewAddressRepository(db DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, address domain.Address) (domain.Address, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO addresses (party_kind, floor, plot, society, lane, address, area, city, state, pincode, map_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+addressColumns,
		address.PartyKind, address.Floor, address.Plot, address.Society, address.Lane,
		address.Address, address.Area, address.City, address.State, address.Pincode, address.MapLink,
	)
	created, err := scanAddress(row)
	if err != nil {
		return domain.Address{}, fmt.Errorf("create address: %w", err)
	}
	return created, nil
}

func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Address, error) {
	var address domain.Address
	err := readRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, "SELECT "+addressColumns+" FROM addresses WHERE id = $1", id)
		var scanErr error
		address, scanErr = scanAddress(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Address{}, domain.NotFoundf("address %s", id)
		}
		return domain.Address{}, fmt.Errorf("get address: %w", err)
	}
	return address, nil
}

// GetByIDs resolves a set of addresses in one round trip. Missing ids are
// simply absent from the result map.
func (r *addressRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Address, error) {
	result := make(map[uuid.UUID]domain.Address, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	err := readRetry(ctx, func() error {
		rows, err := r.db.Query(ctx, "SELECT "+addressColumns+" FROM addresses WHERE id = ANY($1::uuid[])", ids)
		if err != nil {
			return err
		}
		defer rows.Close()
		clear(result)
		for rows.Next() {
			address, err := scanAddress(rows)
			if err != nil {
				return err
			}
			result[address.ID] = address
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get addresses by ids: %w", err)
	}
	return result, nil
}

func (r *addressRepository) Update(ctx context.Context, id uuid.UUID, patch domain.AddressPatch) (domain.Address, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE addresses SET
			floor    = COALESCE($2, floor),
			plot     = COALESCE($3, plot),
			society  = COALESCE($4, society),
			lane     = COALESCE($5, lane),
			address  = COALESCE($6, address),
			area     = COALESCE($7, area),
			city     = COALESCE($8, city),
			state    = COALESCE($9, state),
			pincode  = COALESCE($10, pincode),
			map_link = COALESCE($11, map_link),
			updated_at = now()
		WHERE id = $1
		RETURNING `+addressColumns,
		id, patch.Floor, patch.Plot, patch.Society, patch.Lane, patch.Address,
		patch.Area, patch.City, patch.State, patch.Pincode, patch.MapLink,
	)
	updated, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Address{}, domain.NotFoundf("address %s", id)
		}
		return domain.Address{}, fmt.Errorf("update address: %w", err)
	}
	return updated, nil
}

func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) (domain.Address, error) {
	row := r.db.QueryRow(ctx, "DELETE FROM addresses WHERE id = $1 RETURNING "+addressColumns, id)
	deleted, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Address{}, domain.NotFoundf("address %s", id)
		}
		return domain.Address{}, fmt.Errorf("delete address: %w", err)
	}
	return deleted, nil
}

func scanAddress(row pgx.Row) (domain.Address, error) {
	var address domain.Address
	err := row.Scan(
		&address.ID, &address.PartyKind, &address.Floor, &address.Plot, &address.Society,
		&address.Lane, &address.Address, &address.Area, &address.City, &address.State,
		&address.Pincode, &address.MapLink, &address.CreatedAt, &address.UpdatedAt,
	)
	return address, err
}
