package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/media"
)

type fakeOrderRepo struct {
	orders    map[uuid.UUID]domain.Order
	listed    []domain.Order
	total     int
	updateErr error
}

func (f *fakeOrderRepo) Create(_ context.Context, o domain.Order) (domain.Order, error) {
	o.ID = uuid.New()
	return o, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return domain.Order{}, domain.NotFoundf("order %s", id)
}

func (f *fakeOrderRepo) List(_ context.Context, _ domain.OrderFilter, _, _ int) ([]domain.Order, int, error) {
	return f.listed, f.total, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, o domain.Order) (domain.Order, error) {
	if f.updateErr != nil {
		return domain.Order{}, f.updateErr
	}
	return o, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return f.orders[id], nil
}

type fakeProductRepo struct {
	products  map[uuid.UUID]domain.Product
	listed    []domain.Product
	total     int
	updateErr error
}

func (f *fakeProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	p.ID = uuid.New()
	return p, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return domain.Product{}, domain.NotFoundf("product %s", id)
}

func (f *fakeProductRepo) List(_ context.Context, _ domain.ProductFilter, _, _ int) ([]domain.Product, int, error) {
	return f.listed, f.total, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	if f.updateErr != nil {
		return domain.Product{}, f.updateErr
	}
	return p, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) (domain.Product, error) {
	return f.products[id], nil
}

type memoryStore struct {
	deleted []string
}

func (m *memoryStore) Upload(_ context.Context, _ []byte, displayName, folder string) (media.UploadResult, error) {
	return media.UploadResult{Handle: folder + "/" + uuid.NewString() + "-" + displayName, Name: displayName}, nil
}

func (m *memoryStore) Delete(_ context.Context, handle string) error {
	m.deleted = append(m.deleted, handle)
	return nil
}

func (m *memoryStore) SignURL(handle string, _ time.Duration) (string, error) {
	return "/media/files/" + handle + "?token=t", nil
}

func newTestService(orders *fakeOrderRepo, products *fakeProductRepo, store *memoryStore) *Service {
	resolver := media.NewResolver(store, zap.NewNop(), media.WithFanout(1))
	return NewService(orders, products, resolver, zap.NewNop())
}

func TestCreateOrderRequiresAParty(t *testing.T) {
	service := newTestService(&fakeOrderRepo{}, &fakeProductRepo{}, &memoryStore{})

	_, err := service.CreateOrder(context.Background(), OrderInput{
		OrderType: "bulk",
		Stage:     "sampling",
	})
	if err == nil {
		t.Fatal("expected validation error without customer or supplier")
	}
}

func TestCreateOrderUploadsGallery(t *testing.T) {
	customerID := uuid.New()
	store := &memoryStore{}
	service := newTestService(&fakeOrderRepo{}, &fakeProductRepo{}, store)

	created, err := service.CreateOrder(context.Background(), OrderInput{
		CustomerID: &customerID,
		OrderType:  "bulk",
		Stage:      "sampling",
		NewGallery: []media.RawFile{{Name: "design.png", Data: []byte("x")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(created.Gallery) != 1 {
		t.Fatalf("expected one gallery ref, got %#v", created.Gallery)
	}
	if created.Gallery[0].URL == "" {
		t.Fatal("gallery ref must carry a signed URL")
	}
}

func TestDeleteOrderRemovesBlobsFirst(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{}
	orders := &fakeOrderRepo{orders: map[uuid.UUID]domain.Order{
		id: {ID: id, Gallery: []domain.MediaRef{
			{Handle: "orders/a.png"}, {Handle: "orders/b.png"},
		}},
	}}
	service := newTestService(orders, &fakeProductRepo{}, store)

	warning, err := service.DeleteOrder(context.Background(), id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if warning != nil {
		t.Fatalf("unexpected warning: %v", warning.Message())
	}
	if len(store.deleted) != 2 {
		t.Fatalf("expected both blobs deleted, got %v", store.deleted)
	}
}

func TestUpdateOrderRowFailureRemovesFreshUploads(t *testing.T) {
	id := uuid.New()
	customerID := uuid.New()
	store := &memoryStore{}
	orders := &fakeOrderRepo{
		orders: map[uuid.UUID]domain.Order{
			id: {ID: id, Gallery: []domain.MediaRef{{Handle: "orders/keep.png"}}},
		},
		updateErr: errors.New("connection reset"),
	}
	service := newTestService(orders, &fakeProductRepo{}, store)

	_, _, err := service.UpdateOrder(context.Background(), id, OrderInput{
		CustomerID:      &customerID,
		OrderType:       "bulk",
		Stage:           "sampling",
		RetainedGallery: []string{"orders/keep.png"},
		NewGallery:      []media.RawFile{{Name: "design.png", Data: []byte("x")}},
	})
	if err == nil {
		t.Fatal("expected the row update error to surface")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected the fresh upload deleted, got %v", store.deleted)
	}
	if store.deleted[0] == "orders/keep.png" || !strings.HasPrefix(store.deleted[0], "orders/") {
		t.Fatalf("retained ref must survive, only the upload goes: %v", store.deleted)
	}
}

func TestUpdateProductRowFailureRemovesFreshUploads(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{}
	products := &fakeProductRepo{
		products: map[uuid.UUID]domain.Product{
			id: {ID: id, SupplierID: uuid.New(), Name: "Silk Saree",
				Images: []domain.MediaRef{{Handle: "products/keep.jpg"}}},
		},
		updateErr: errors.New("connection reset"),
	}
	service := newTestService(&fakeOrderRepo{}, products, store)

	_, _, err := service.UpdateProduct(context.Background(), id, ProductInput{
		SupplierID:     uuid.New(),
		Name:           "Silk Saree",
		RetainedImages: []string{"products/keep.jpg"},
		NewImages:      []media.RawFile{{Name: "swatch.jpg", Data: []byte("x")}},
	})
	if err == nil {
		t.Fatal("expected the row update error to surface")
	}
	if len(store.deleted) != 1 || store.deleted[0] == "products/keep.jpg" {
		t.Fatalf("only the fresh upload must be deleted, got %v", store.deleted)
	}
}

func TestCreateProductRequiresSupplier(t *testing.T) {
	service := newTestService(&fakeOrderRepo{}, &fakeProductRepo{}, &memoryStore{})

	_, err := service.CreateProduct(context.Background(), ProductInput{Name: "Silk Saree"})
	if err == nil {
		t.Fatal("expected validation error without supplier")
	}
}

func TestListProductsSignsImages(t *testing.T) {
	products := &fakeProductRepo{
		listed: []domain.Product{
			{
				ID:         uuid.New(),
				SupplierID: uuid.New(),
				Name:       "Silk Saree",
				Images:     []domain.MediaRef{{Handle: "products/saree.jpg", DisplayName: "front"}},
			},
		},
		total: 1,
	}
	service := newTestService(&fakeOrderRepo{}, products, &memoryStore{})

	result, err := service.ListProducts(context.Background(), domain.ProductFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Data[0].Images[0].URL == "" {
		t.Fatal("product images must carry signed URLs")
	}
}
