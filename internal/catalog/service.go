package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/media"
	"textile-backoffice/internal/repository"
)

// Service owns the order and product lifecycles. Both carry one media
// collection (order gallery, product images) reconciled through the blob
// store.
type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	media    *media.Resolver
	logger   *zap.Logger
}

// NewService wires the catalog service.
func NewService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	resolver *media.Resolver,
	logger *zap.Logger,
) *Service {
	return &Service{orders: orders, products: products, media: resolver, logger: logger}
}

// OrderInput is the submission for a new or updated order. On update the
// gallery is reconciled against RetainedGallery; on create both retained
// fields are ignored.
type OrderInput struct {
	CustomerID      *uuid.UUID
	SupplierID      *uuid.UUID
	OrderType       string
	Sample          string
	Stage           string
	Description     string
	ProductName     string
	TargetDate      *time.Time
	RetainedGallery []string
	NewGallery      []media.RawFile
	GalleryNotes    map[int]string
}

// ProductInput is the submission for a new or updated product.
type ProductInput struct {
	SupplierID     uuid.UUID
	Name           string
	Facets         domain.ProductFacets
	RetainedImages []string
	NewImages      []media.RawFile
	ImageNotes     map[int]string
}

// OrderListResult is one page of orders.
type OrderListResult struct {
	Data     []domain.Order      `json:"data"`
	Metadata domain.ListMetadata `json:"metadata"`
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Data     []domain.Product    `json:"data"`
	Metadata domain.ListMetadata `json:"metadata"`
}

func validateOrder(input OrderInput) error {
	if strings.TrimSpace(input.OrderType) == "" {
		return domain.Validationf("order type is required")
	}
	if strings.TrimSpace(input.Stage) == "" {
		return domain.Validationf("order stage is required")
	}
	if input.CustomerID == nil && input.SupplierID == nil {
		return domain.Validationf("an order needs a customer or a supplier")
	}
	return nil
}

func validateProduct(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domain.Validationf("product name is required")
	}
	if input.SupplierID == uuid.Nil {
		return domain.Validationf("product supplier is required")
	}
	return nil
}

// CreateOrder uploads the gallery, then writes the row. Uploads are removed
// again if the insert fails.
func (s *Service) CreateOrder(ctx context.Context, input OrderInput) (domain.Order, error) {
	if err := validateOrder(input); err != nil {
		return domain.Order{}, err
	}

	gallery, _, err := s.media.Reconcile(ctx, nil, nil, input.NewGallery, input.GalleryNotes, "orders")
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		CustomerID:  input.CustomerID,
		SupplierID:  input.SupplierID,
		OrderType:   input.OrderType,
		Sample:      input.Sample,
		Stage:       input.Stage,
		Description: input.Description,
		ProductName: input.ProductName,
		TargetDate:  input.TargetDate,
		Gallery:     gallery,
	}
	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.media.DeleteAll(ctx, gallery)
		return domain.Order{}, err
	}

	s.logger.Info("order created", zap.String("id", created.ID.String()))
	return s.enrichOrder(created), nil
}

// GetOrder returns one order with signed gallery URLs.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return s.enrichOrder(order), nil
}

// ListOrders returns one filtered page of orders.
func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter, limit, offset int) (OrderListResult, error) {
	if limit < 1 {
		return OrderListResult{}, domain.Validationf("limit must be at least 1")
	}
	if offset < 0 {
		return OrderListResult{}, domain.Validationf("offset must be zero or positive")
	}
	rows, total, err := s.orders.List(ctx, filter, limit, offset)
	if err != nil {
		return OrderListResult{}, err
	}
	for i := range rows {
		rows[i] = s.enrichOrder(rows[i])
	}
	return OrderListResult{
		Data:     rows,
		Metadata: domain.ListMetadata{Total: total, Limit: limit, Offset: offset},
	}, nil
}

// UpdateOrder replaces the scalar fields and reconciles the gallery.
func (s *Service) UpdateOrder(ctx context.Context, id uuid.UUID, input OrderInput) (domain.Order, *domain.ReconcileWarning, error) {
	if err := validateOrder(input); err != nil {
		return domain.Order{}, nil, err
	}
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, nil, err
	}

	gallery, warning, err := s.media.Reconcile(ctx,
		current.Gallery, input.RetainedGallery, input.NewGallery, input.GalleryNotes, "orders")
	if err != nil {
		return domain.Order{}, nil, err
	}

	next := current
	next.CustomerID = input.CustomerID
	next.SupplierID = input.SupplierID
	next.OrderType = input.OrderType
	next.Sample = input.Sample
	next.Stage = input.Stage
	next.Description = input.Description
	next.ProductName = input.ProductName
	next.TargetDate = input.TargetDate
	next.Gallery = gallery

	updated, err := s.orders.Update(ctx, next)
	if err != nil {
		// The row write failed; nothing references the fresh uploads.
		s.media.DeleteAll(ctx, media.Uploaded(gallery, input.NewGallery))
		return domain.Order{}, nil, err
	}
	return s.enrichOrder(updated), warning, nil
}

// DeleteOrder removes the gallery blobs, then the row. Blob failures do not
// block the row delete.
func (s *Service) DeleteOrder(ctx context.Context, id uuid.UUID) (*domain.ReconcileWarning, error) {
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	failed := s.media.DeleteAll(ctx, current.Gallery)
	if _, err := s.orders.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("order deleted", zap.String("id", id.String()))
	if len(failed) > 0 {
		return &domain.ReconcileWarning{FailedDeletes: failed}, nil
	}
	return nil, nil
}

// CreateProduct uploads the images, then writes the row.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	if err := validateProduct(input); err != nil {
		return domain.Product{}, err
	}

	images, _, err := s.media.Reconcile(ctx, nil, nil, input.NewImages, input.ImageNotes, "products")
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		SupplierID: input.SupplierID,
		Name:       input.Name,
		Facets:     input.Facets,
		Images:     images,
	}
	created, err := s.products.Create(ctx, product)
	if err != nil {
		s.media.DeleteAll(ctx, images)
		return domain.Product{}, err
	}

	s.logger.Info("product created", zap.String("id", created.ID.String()))
	return s.enrichProduct(created), nil
}

// GetProduct returns one product with signed image URLs.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return s.enrichProduct(product), nil
}

// ListProducts returns one filtered page of products, optionally scoped to a
// supplier.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter, limit, offset int) (ProductListResult, error) {
	if limit < 1 {
		return ProductListResult{}, domain.Validationf("limit must be at least 1")
	}
	if offset < 0 {
		return ProductListResult{}, domain.Validationf("offset must be zero or positive")
	}
	rows, total, err := s.products.List(ctx, filter, limit, offset)
	if err != nil {
		return ProductListResult{}, err
	}
	for i := range rows {
		rows[i] = s.enrichProduct(rows[i])
	}
	return ProductListResult{
		Data:     rows,
		Metadata: domain.ListMetadata{Total: total, Limit: limit, Offset: offset},
	}, nil
}

// UpdateProduct replaces the scalar fields and reconciles the images.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (domain.Product, *domain.ReconcileWarning, error) {
	if err := validateProduct(input); err != nil {
		return domain.Product{}, nil, err
	}
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, nil, err
	}

	images, warning, err := s.media.Reconcile(ctx,
		current.Images, input.RetainedImages, input.NewImages, input.ImageNotes, "products")
	if err != nil {
		return domain.Product{}, nil, err
	}

	next := current
	next.SupplierID = input.SupplierID
	next.Name = input.Name
	next.Facets = input.Facets
	next.Images = images

	updated, err := s.products.Update(ctx, next)
	if err != nil {
		s.media.DeleteAll(ctx, media.Uploaded(images, input.NewImages))
		return domain.Product{}, nil, err
	}
	return s.enrichProduct(updated), warning, nil
}

// DeleteProduct removes the image blobs, then the row.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) (*domain.ReconcileWarning, error) {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	failed := s.media.DeleteAll(ctx, current.Images)
	if _, err := s.products.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("product deleted", zap.String("id", id.String()))
	if len(failed) > 0 {
		return &domain.ReconcileWarning{FailedDeletes: failed}, nil
	}
	return nil, nil
}

func (s *Service) enrichOrder(order domain.Order) domain.Order {
	order.Gallery = s.media.EnrichRefs(order.Gallery)
	return order
}

func (s *Service) enrichProduct(product domain.Product) domain.Product {
	product.Images = s.media.EnrichRefs(product.Images)
	return product
}
