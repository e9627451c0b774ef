package addressloader

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"textile-backoffice/internal/domain"
)

type fakeAddressRepo struct {
	addresses map[uuid.UUID]domain.Address
	calls     int
}

func (f *fakeAddressRepo) Create(_ context.Context, a domain.Address) (domain.Address, error) {
	a.ID = uuid.New()
	return a, nil
}

func (f *fakeAddressRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Address, error) {
	if a, ok := f.addresses[id]; ok {
		return a, nil
	}
	return domain.Address{}, domain.NotFoundf("address %s", id)
}

func (f *fakeAddressRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Address, error) {
	f.calls++
	result := make(map[uuid.UUID]domain.Address)
	for _, id := range ids {
		if a, ok := f.addresses[id]; ok {
			result[id] = a
		}
	}
	return result, nil
}

func (f *fakeAddressRepo) Update(_ context.Context, id uuid.UUID, _ domain.AddressPatch) (domain.Address, error) {
	return f.addresses[id], nil
}

func (f *fakeAddressRepo) Delete(_ context.Context, id uuid.UUID) (domain.Address, error) {
	return f.addresses[id], nil
}

func TestLoadManyBatchesIntoOneQuery(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	repo := &fakeAddressRepo{addresses: map[uuid.UUID]domain.Address{
		id1: {ID: id1, City: "Surat"},
		id2: {ID: id2, City: "Jaipur"},
	}}
	loader := NewAddressLoader(repo)

	keys := dataloader.Keys{
		dataloader.StringKey(id1.String()),
		dataloader.StringKey(id2.String()),
	}
	results, errs := loader.Loader.LoadMany(context.Background(), keys)()
	if len(errs) > 0 {
		t.Fatalf("load many failed: %v", errs)
	}
	if len(results) != len(keys) {
		t.Fatalf("expected one result per key, got %d for %d keys", len(results), len(keys))
	}
	if repo.calls != 1 {
		t.Fatalf("expected one batched GetByIDs call, got %d", repo.calls)
	}
	if address, ok := results[1].(domain.Address); !ok || address.City != "Jaipur" {
		t.Fatalf("key order not preserved: %#v", results[1])
	}
}

func TestBatchReturnsResultPerKeyOnBadKey(t *testing.T) {
	id := uuid.New()
	repo := &fakeAddressRepo{addresses: map[uuid.UUID]domain.Address{
		id: {ID: id, City: "Surat"},
	}}
	loader := NewAddressLoader(repo)

	keys := dataloader.Keys{
		dataloader.StringKey(id.String()),
		dataloader.StringKey("not-a-uuid"),
	}
	results, errs := loader.Loader.LoadMany(context.Background(), keys)()
	if len(results) != len(keys) {
		t.Fatalf("expected one result slot per key, got %d for %d keys", len(results), len(keys))
	}
	if len(errs) == 0 {
		t.Fatal("expected errors for the malformed key batch")
	}
	found := false
	for _, err := range errs {
		if err != nil && strings.Contains(err.Error(), "invalid address key") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an invalid key error, got %v", errs)
	}
}
