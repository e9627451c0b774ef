package media

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *DiskBlobStore {
	t.Helper()
	store, err := NewDiskBlobStore(t.TempDir(), []byte("test-secret"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestUploadMintsFreshHandles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Upload(ctx, []byte("one"), "Invoice 2024.PDF", "customers")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	second, err := store.Upload(ctx, []byte("two"), "Invoice 2024.PDF", "customers")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if first.Handle == second.Handle {
		t.Fatalf("repeated uploads must mint distinct handles, both got %q", first.Handle)
	}
	if !strings.HasPrefix(first.Handle, "customers/") {
		t.Fatalf("handle missing folder prefix: %q", first.Handle)
	}
	if !strings.HasSuffix(first.Handle, "invoice-2024.pdf") {
		t.Fatalf("display name not sanitized into handle: %q", first.Handle)
	}

	file, err := store.Open(first.Handle)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer file.Close()
	content := make([]byte, 3)
	if _, err := file.Read(content); err != nil || string(content) != "one" {
		t.Fatalf("stored content mismatch: %q %v", content, err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.Upload(ctx, []byte("x"), "photo.jpg", "orders")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := store.Delete(ctx, result.Handle); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(ctx, result.Handle); err != nil {
		t.Fatalf("deleting an already-deleted handle must be a no-op: %v", err)
	}
	if _, err := store.Open(result.Handle); err == nil {
		t.Fatal("expected open to fail after delete")
	}
}

func TestResolvePathRejectsEscapes(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(context.Background(), "../../etc/passwd"); err == nil {
		t.Fatal("expected traversal handle to be rejected")
	}
}

func TestSignURLTokensAreIndependent(t *testing.T) {
	store := newTestStore(t)

	first, err := store.SignURL("orders/abc-photo.jpg", time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	second, err := store.SignURL("orders/abc-photo.jpg", 2*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if first == second {
		t.Fatal("two signatures with different windows must differ")
	}

	parsed, err := url.Parse(second)
	if err != nil {
		t.Fatalf("signed URL unparsable: %v", err)
	}
	token := parsed.Query().Get("token")
	if err := store.VerifyToken("orders/abc-photo.jpg", token); err != nil {
		t.Fatalf("freshly signed token must verify: %v", err)
	}
	if err := store.VerifyToken("orders/other.jpg", token); err == nil {
		t.Fatal("token must be bound to its handle")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, err := store.SignURL("orders/abc.jpg", time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	store.now = time.Now

	parsed, _ := url.Parse(signed)
	if err := store.VerifyToken("orders/abc.jpg", parsed.Query().Get("token")); err == nil {
		t.Fatal("expected the stale token to be rejected")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	store := newTestStore(t)
	other, err := NewDiskBlobStore(t.TempDir(), []byte("other-secret"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	signed, err := other.SignURL("orders/abc.jpg", time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	parsed, _ := url.Parse(signed)
	if err := store.VerifyToken("orders/abc.jpg", parsed.Query().Get("token")); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestUploadHonorsContextCancellation(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Upload(ctx, []byte("x"), "a.txt", "misc"); err == nil {
		t.Fatal("expected upload to fail on cancelled context")
	}
	if _, err := os.ReadDir(store.baseDir); err != nil {
		t.Fatalf("base dir should still exist: %v", err)
	}
}
