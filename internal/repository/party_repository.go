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

const partyColumns = "p.id, p.kind, p.name, p.company, p.mobile, p.tax_id, p.facets, p.documents, p.gallery, p.notes, p.address_id, p.created_at, p.updated_at"

type partyRepository struct {
	db        DB
	addresses AddressRepository
}

// NewPartyRepository creates a party repository. The address repository is
// used to batch-resolve page addresses after the raw rows are fetched.
func NewPartyRepository(db DB, addresses AddressRepository) PartyRepository {
	return &partyRepository{db: db, addresses: addresses}
}

func (r *partyRepository) Create(ctx context.Context, party domain.Party) (domain.Party, error) {
	facets, documents, gallery, err := marshalPartyJSON(party)
	if err != nil {
		return domain.Party{}, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO parties (kind, name, company, mobile, tax_id, facets, documents, gallery, notes, address_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+aliasless(partyColumns),
		party.Kind, party.Name, party.Company, party.Mobile, party.TaxID,
		facets, documents, gallery, party.Notes, party.AddressID,
	)
	created, err := scanParty(row)
	if err != nil {
		return domain.Party{}, fmt.Errorf("create party: %w", err)
	}
	return created, nil
}

func (r *partyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Party, error) {
	var party domain.Party
	err := readRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, "SELECT "+partyColumns+" FROM parties p WHERE p.id = $1", id)
		var scanErr error
		party, scanErr = scanParty(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Party{}, domain.NotFoundf("party %s", id)
		}
		return domain.Party{}, fmt.Errorf("get party: %w", err)
	}
	return party, nil
}

// List executes the data query and the count query over one predicate set.
// The two queries run concurrently and fail together: data without a total is
// never returned. When a join-required predicate is active the query joins
// the party's orders and deduplicates by party id.
func (r *partyRepository) List(ctx context.Context, kind domain.PartyKind, filter domain.PartyFilter, limit, offset int) ([]domain.Party, int, error) {
	countSQL, countArgs, dataSQL, dataArgs := buildPartyListSQL(kind, filter, limit, offset)

	var (
		parties []domain.Party
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readRetry(gctx, func() error {
			rows, err := r.db.Query(gctx, dataSQL, dataArgs...)
			if err != nil {
				return fmt.Errorf("list parties: %w", err)
			}
			defer rows.Close()
			page := make([]domain.Party, 0, limit)
			for rows.Next() {
				party, err := scanParty(rows)
				if err != nil {
					return fmt.Errorf("scan party: %w", err)
				}
				page = append(page, party)
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("iterate parties: %w", err)
			}
			parties = page
			return nil
		})
	})
	g.Go(func() error {
		return readRetry(gctx, func() error {
			if err := r.db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
				return fmt.Errorf("count parties: %w", err)
			}
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if err := r.attachAddresses(ctx, parties); err != nil {
		return nil, 0, err
	}
	return parties, total, nil
}

// buildPartyListSQL derives the count and data statements from one predicate
// set, so both sides see the same WHERE clause and argument prefix.
func buildPartyListSQL(kind domain.PartyKind, filter domain.PartyFilter, limit, offset int) (countSQL string, countArgs []any, dataSQL string, dataArgs []any) {
	predicates := query.ComposeParty(kind, filter)

	from := "FROM parties p"
	group := ""
	countExpr := "COUNT(*)"
	if predicates.RequiresJoin() {
		joinKey := "o.customer_id"
		if kind == domain.PartyKindSupplier {
			joinKey = "o.supplier_id"
		}
		from = fmt.Sprintf("FROM parties p JOIN orders o ON %s = p.id", joinKey)
		group = "GROUP BY p.id "
		countExpr = "COUNT(DISTINCT p.id)"
	}

	where := predicates.WhereClause()
	countSQL = fmt.Sprintf("SELECT %s %s %s", countExpr, from, where)
	countArgs = predicates.Args()

	builder := predicates.Builder()
	dataSQL = fmt.Sprintf(
		"SELECT %s %s %s %sORDER BY p.created_at DESC, p.id DESC LIMIT %s OFFSET %s",
		partyColumns, from, where, group, builder.Arg(limit), builder.Arg(offset),
	)
	dataArgs = builder.Args()
	return countSQL, countArgs, dataSQL, dataArgs
}

// attachAddresses resolves the distinct address ids on the page in one batch.
func (r *partyRepository) attachAddresses(ctx context.Context, parties []domain.Party) error {
	seen := make(map[uuid.UUID]struct{}, len(parties))
	ids := make([]uuid.UUID, 0, len(parties))
	for _, party := range parties {
		if _, dup := seen[party.AddressID]; dup {
			continue
		}
		seen[party.AddressID] = struct{}{}
		ids = append(ids, party.AddressID)
	}
	resolved, err := r.addresses.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve page addresses: %w", err)
	}
	for i := range parties {
		if address, ok := resolved[parties[i].AddressID]; ok {
			addressCopy := address
			parties[i].Address = &addressCopy
		}
	}
	return nil
}

func (r *partyRepository) Update(ctx context.Context, party domain.Party) (domain.Party, error) {
	facets, documents, gallery, err := marshalPartyJSON(party)
	if err != nil {
		return domain.Party{}, err
	}
	row := r.db.QueryRow(ctx, `
		UPDATE parties SET
			name = $2, company = $3, mobile = $4, tax_id = $5,
			facets = $6, documents = $7, gallery = $8, notes = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING `+aliasless(partyColumns),
		party.ID, party.Name, party.Company, party.Mobile, party.TaxID,
		facets, documents, gallery, party.Notes,
	)
	updated, err := scanParty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Party{}, domain.NotFoundf("party %s", party.ID)
		}
		return domain.Party{}, fmt.Errorf("update party: %w", err)
	}
	return updated, nil
}

func (r *partyRepository) Delete(ctx context.Context, id uuid.UUID) (domain.Party, error) {
	row := r.db.QueryRow(ctx, "DELETE FROM parties WHERE id = $1 RETURNING "+aliasless(partyColumns), id)
	deleted, err := scanParty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Party{}, domain.NotFoundf("party %s", id)
		}
		return domain.Party{}, fmt.Errorf("delete party: %w", err)
	}
	return deleted, nil
}

func marshalPartyJSON(party domain.Party) (facets, documents, gallery []byte, err error) {
	if facets, err = json.Marshal(party.Facets); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal party facets: %w", err)
	}
	if documents, err = json.Marshal(emptyIfNil(party.Documents)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal party documents: %w", err)
	}
	if gallery, err = json.Marshal(emptyIfNil(party.Gallery)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal party gallery: %w", err)
	}
	return facets, documents, gallery, nil
}

func scanParty(row pgx.Row) (domain.Party, error) {
	var (
		party                      domain.Party
		facets, documents, gallery []byte
	)
	err := row.Scan(
		&party.ID, &party.Kind, &party.Name, &party.Company, &party.Mobile, &party.TaxID,
		&facets, &documents, &gallery, &party.Notes, &party.AddressID,
		&party.CreatedAt, &party.UpdatedAt,
	)
	if err != nil {
		return domain.Party{}, err
	}
	if err := json.Unmarshal(facets, &party.Facets); err != nil {
		return domain.Party{}, fmt.Errorf("decode facets for party %s: %w", party.ID, err)
	}
	if err := json.Unmarshal(documents, &party.Documents); err != nil {
		return domain.Party{}, fmt.Errorf("decode documents for party %s: %w", party.ID, err)
	}
	if err := json.Unmarshal(gallery, &party.Gallery); err != nil {
		return domain.Party{}, fmt.Errorf("decode gallery for party %s: %w", party.ID, err)
	}
	return party, nil
}

func emptyIfNil(refs []domain.MediaRef) []domain.MediaRef {
	if refs == nil {
		return []domain.MediaRef{}
	}
	return refs
}

// aliasless strips the "p." prefixes for statements without a table alias.
func aliasless(columns string) string {
	return strings.ReplaceAll(columns, "p.", "")
}
