package party

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/media"
	"textile-backoffice/internal/middleware"
	"textile-backoffice/internal/repository"
	"textile-backoffice/pkg/validator"
)

// TxRunner runs a function inside one database transaction. *db.Connection
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// Service owns the party lifecycle. A party and its address are created and
// deleted together inside one transaction; blob operations happen outside the
// transaction because the store cannot roll back.
type Service struct {
	conn      TxRunner
	parties   repository.PartyRepository
	addresses repository.AddressRepository
	areas     repository.AreaRepository
	products  repository.ProductRepository
	media     *media.Resolver
	logger    *zap.Logger
}

// NewService wires the party lifecycle service. The product repository is
// read when a supplier is deleted, to collect the image handles of the
// products that go down with it.
func NewService(
	conn TxRunner,
	parties repository.PartyRepository,
	addresses repository.AddressRepository,
	areas repository.AreaRepository,
	products repository.ProductRepository,
	resolver *media.Resolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		conn:      conn,
		parties:   parties,
		addresses: addresses,
		areas:     areas,
		products:  products,
		media:     resolver,
		logger:    logger,
	}
}

// CreateInput is the full submission for a new party. Files are uploaded
// before the rows are written; if the transaction fails the uploads are
// removed again.
type CreateInput struct {
	Kind          domain.PartyKind
	Name          string
	Company       string
	Mobile        string
	TaxID         string
	Facets        domain.PartyFacets
	Notes         string
	Address       domain.Address
	Documents     []media.RawFile
	DocumentNotes map[int]string
	Gallery       []media.RawFile
	GalleryNotes  map[int]string
}

// UpdateInput carries a party update. Scalar fields and facets replace the
// stored values; media collections are reconciled against the retained handle
// lists; the address patch only touches non-nil fields.
type UpdateInput struct {
	ID                uuid.UUID
	Name              string
	Company           string
	Mobile            string
	TaxID             string
	Facets            domain.PartyFacets
	Notes             string
	AddressPatch      domain.AddressPatch
	RetainedDocuments []string
	NewDocuments      []media.RawFile
	DocumentNotes     map[int]string
	RetainedGallery   []string
	NewGallery        []media.RawFile
	GalleryNotes      map[int]string
}

// ListResult is one page of parties plus the pagination envelope.
type ListResult struct {
	Data     []domain.Party      `json:"data"`
	Metadata domain.ListMetadata `json:"metadata"`
}

func (s *Service) validateCore(name string, kind domain.PartyKind, mobile, taxID string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Validationf("party name is required")
	}
	if kind != domain.PartyKindCustomer && kind != domain.PartyKindSupplier {
		return domain.Validationf("unknown party kind %q", kind)
	}
	if errs := validator.Collect(validator.Mobile(mobile), validator.TaxID(taxID)); len(errs) > 0 {
		return domain.Validationf("%s", errs[0].Error())
	}
	return nil
}

// Create uploads the initial media, then writes address and party rows in one
// transaction. Customer areas are registered in the lookup as a side effect.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Party, error) {
	if err := s.validateCore(input.Name, input.Kind, input.Mobile, input.TaxID); err != nil {
		return domain.Party{}, err
	}
	if fieldErr := validator.Pincode(input.Address.Pincode); fieldErr != nil {
		return domain.Party{}, domain.Validationf("%s", fieldErr.Error())
	}

	folder := string(input.Kind) + "s"
	documents, _, err := s.media.Reconcile(ctx, nil, nil, input.Documents, input.DocumentNotes, folder)
	if err != nil {
		return domain.Party{}, err
	}
	gallery, _, err := s.media.Reconcile(ctx, nil, nil, input.Gallery, input.GalleryNotes, folder)
	if err != nil {
		s.media.DeleteAll(ctx, documents)
		return domain.Party{}, err
	}

	var created domain.Party
	err = s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		addressRepo := repository.NewAddressRepository(tx)

		address := input.Address
		address.PartyKind = input.Kind
		address, err := addressRepo.Create(ctx, address)
		if err != nil {
			return fmt.Errorf("create address: %w", err)
		}

		if input.Kind == domain.PartyKindCustomer && strings.TrimSpace(address.Area) != "" {
			if _, err := repository.NewAreaRepository(tx).FindOrCreate(ctx, address.Area); err != nil {
				return fmt.Errorf("register area: %w", err)
			}
		}

		party := domain.Party{
			Kind:      input.Kind,
			Name:      input.Name,
			Company:   input.Company,
			Mobile:    input.Mobile,
			TaxID:     input.TaxID,
			Facets:    input.Facets,
			Documents: documents,
			Gallery:   gallery,
			Notes:     input.Notes,
			AddressID: address.ID,
		}
		created, err = repository.NewPartyRepository(tx, addressRepo).Create(ctx, party)
		if err != nil {
			return fmt.Errorf("create party: %w", err)
		}
		created.Address = &address
		return nil
	})
	if err != nil {
		// The rows rolled back; the blobs are orphaned unless removed here.
		s.media.DeleteAll(ctx, append(documents, gallery...))
		return domain.Party{}, err
	}

	s.logger.Info("party created",
		zap.String("id", created.ID.String()),
		zap.String("kind", string(created.Kind)))
	return s.enrich(created), nil
}

// Get returns one party with its address and signed media URLs. When the
// request carries a dataloader the address read goes through it, so several
// lookups in one request batch into one query.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Party, error) {
	party, err := s.parties.GetByID(ctx, id)
	if err != nil {
		return domain.Party{}, err
	}
	if party.AddressID != uuid.Nil {
		if loader := middleware.AddressLoaderFromContext(ctx); loader != nil {
			if address, err := loader.Load(ctx, party.AddressID); err == nil {
				party.Address = address
			}
		} else if address, err := s.addresses.GetByID(ctx, party.AddressID); err == nil {
			party.Address = &address
		}
	}
	return s.enrich(party), nil
}

// List returns one filtered page of parties of a kind.
func (s *Service) List(ctx context.Context, kind domain.PartyKind, filter domain.PartyFilter, limit, offset int) (ListResult, error) {
	if limit < 1 {
		return ListResult{}, domain.Validationf("limit must be at least 1")
	}
	if offset < 0 {
		return ListResult{}, domain.Validationf("offset must be zero or positive")
	}
	if kind != domain.PartyKindCustomer && kind != domain.PartyKindSupplier {
		return ListResult{}, domain.Validationf("unknown party kind %q", kind)
	}

	rows, total, err := s.parties.List(ctx, kind, filter, limit, offset)
	if err != nil {
		return ListResult{}, err
	}
	for i := range rows {
		rows[i] = s.enrich(rows[i])
	}
	return ListResult{
		Data:     rows,
		Metadata: domain.ListMetadata{Total: total, Limit: limit, Offset: offset},
	}, nil
}

// Update replaces the scalar fields and facets, reconciles both media
// collections, and patches the owned address, all against the current stored
// state. Delete failures during reconcile surface as a warning, not an error.
func (s *Service) Update(ctx context.Context, input UpdateInput) (domain.Party, *domain.ReconcileWarning, error) {
	current, err := s.parties.GetByID(ctx, input.ID)
	if err != nil {
		return domain.Party{}, nil, err
	}
	if err := s.validateCore(input.Name, current.Kind, input.Mobile, input.TaxID); err != nil {
		return domain.Party{}, nil, err
	}
	if input.AddressPatch.Pincode != nil {
		if fieldErr := validator.Pincode(*input.AddressPatch.Pincode); fieldErr != nil {
			return domain.Party{}, nil, domain.Validationf("%s", fieldErr.Error())
		}
	}

	folder := string(current.Kind) + "s"
	documents, documentsWarning, err := s.media.Reconcile(ctx,
		current.Documents, input.RetainedDocuments, input.NewDocuments, input.DocumentNotes, folder)
	if err != nil {
		return domain.Party{}, nil, err
	}
	gallery, galleryWarning, err := s.media.Reconcile(ctx,
		current.Gallery, input.RetainedGallery, input.NewGallery, input.GalleryNotes, folder)
	if err != nil {
		return domain.Party{}, nil, err
	}
	warning := mergeWarnings(documentsWarning, galleryWarning)

	var updated domain.Party
	err = s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		addressRepo := repository.NewAddressRepository(tx)

		address, err := addressRepo.Update(ctx, current.AddressID, input.AddressPatch)
		if err != nil {
			return fmt.Errorf("patch address: %w", err)
		}

		if current.Kind == domain.PartyKindCustomer && input.AddressPatch.Area != nil && strings.TrimSpace(*input.AddressPatch.Area) != "" {
			if _, err := repository.NewAreaRepository(tx).FindOrCreate(ctx, *input.AddressPatch.Area); err != nil {
				return fmt.Errorf("register area: %w", err)
			}
		}

		next := current
		next.Name = input.Name
		next.Company = input.Company
		next.Mobile = input.Mobile
		next.TaxID = input.TaxID
		next.Facets = input.Facets
		next.Notes = input.Notes
		next.Documents = documents
		next.Gallery = gallery
		updated, err = repository.NewPartyRepository(tx, addressRepo).Update(ctx, next)
		if err != nil {
			return fmt.Errorf("update party: %w", err)
		}
		updated.Address = &address
		return nil
	})
	if err != nil {
		// The rows rolled back; the fresh uploads are orphaned unless
		// removed here. Retained refs stay untouched.
		s.media.DeleteAll(ctx, append(
			append([]domain.MediaRef{}, media.Uploaded(documents, input.NewDocuments)...),
			media.Uploaded(gallery, input.NewGallery)...))
		return domain.Party{}, nil, err
	}
	return s.enrich(updated), warning, nil
}

// Delete removes the party's blobs, then the party row and its address in one
// transaction. Deleting a supplier cascades its product rows, so the product
// image handles are collected and deleted here as well. Blob failures do not
// block the row delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.ReconcileWarning, error) {
	current, err := s.parties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	refs := append(append([]domain.MediaRef{}, current.Documents...), current.Gallery...)
	if current.Kind == domain.PartyKindSupplier {
		productRefs, err := s.supplierProductRefs(ctx, id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, productRefs...)
	}
	failed := s.media.DeleteAll(ctx, refs)

	err = s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		addressRepo := repository.NewAddressRepository(tx)
		if _, err := repository.NewPartyRepository(tx, addressRepo).Delete(ctx, id); err != nil {
			return fmt.Errorf("delete party: %w", err)
		}
		if current.AddressID != uuid.Nil {
			if _, err := addressRepo.Delete(ctx, current.AddressID); err != nil {
				return fmt.Errorf("delete address: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("party deleted", zap.String("id", id.String()))
	if len(failed) > 0 {
		return &domain.ReconcileWarning{FailedDeletes: failed}, nil
	}
	return nil, nil
}

const productPageSize = 200

// supplierProductRefs pages through the supplier's products and collects
// every image ref. Must run before the supplier row is deleted, because the
// cascade takes the product rows with it.
func (s *Service) supplierProductRefs(ctx context.Context, supplierID uuid.UUID) ([]domain.MediaRef, error) {
	filter := domain.ProductFilter{SupplierID: &supplierID}
	var refs []domain.MediaRef
	for offset := 0; ; offset += productPageSize {
		page, total, err := s.products.List(ctx, filter, productPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list supplier products: %w", err)
		}
		for _, product := range page {
			refs = append(refs, product.Images...)
		}
		if len(page) == 0 || offset+len(page) >= total {
			return refs, nil
		}
	}
}

// Areas lists the known area names for the customer address form.
func (s *Service) Areas(ctx context.Context) ([]domain.Area, error) {
	return s.areas.List(ctx)
}

func (s *Service) enrich(party domain.Party) domain.Party {
	party.Documents = s.media.EnrichRefs(party.Documents)
	party.Gallery = s.media.EnrichRefs(party.Gallery)
	return party
}

func mergeWarnings(a, b *domain.ReconcileWarning) *domain.ReconcileWarning {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &domain.ReconcileWarning{
		FailedDeletes: append(append([]string{}, a.FailedDeletes...), b.FailedDeletes...),
	}
}
