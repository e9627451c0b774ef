package media

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadResult identifies a stored blob.
type UploadResult struct {
	Handle string
	Name   string
}

// BlobStore is the storage provider contract this core requires. Handles are
// opaque: minted by Upload, passed back verbatim to Delete and SignURL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, displayName, folder string) (UploadResult, error)
	Delete(ctx context.Context, handle string) error
	SignURL(handle string, ttl time.Duration) (string, error)
}

// DiskBlobStore keeps blobs on the local filesystem and signs time-bounded
// download URLs served by the media HTTP handler.
type DiskBlobStore struct {
	baseDir string
	signer  *urlSigner
	now     func() time.Time
}

// NewDiskBlobStore creates a disk-backed blob store rooted at baseDir.
func NewDiskBlobStore(baseDir string, secret []byte) (*DiskBlobStore, error) {
	baseDir = filepath.Clean(strings.TrimSpace(baseDir))
	if baseDir == "" || baseDir == "." {
		return nil, errors.New("blob base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure blob directory: %w", err)
	}
	return &DiskBlobStore{
		baseDir: baseDir,
		signer:  newURLSigner(secret),
		now:     time.Now,
	}, nil
}

// Upload stores the payload under a fresh handle. Retrying an upload mints a
// new handle; it never touches an existing blob.
func (s *DiskBlobStore) Upload(ctx context.Context, data []byte, displayName, folder string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}
	name := sanitizeFileComponent(displayName)
	if name == "" {
		name = "file"
	}
	folder = sanitizeFileComponent(folder)
	if folder == "" {
		folder = "misc"
	}
	handle := folder + "/" + uuid.New().String() + "-" + name
	target := filepath.Join(s.baseDir, filepath.FromSlash(handle))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("ensure blob folder: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return UploadResult{}, fmt.Errorf("write blob %s: %w", handle, err)
	}
	return UploadResult{Handle: handle, Name: name}, nil
}

// Delete removes the blob. Deleting an already-deleted handle is a no-op.
func (s *DiskBlobStore) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolvePath(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", handle, err)
	}
	return nil
}

// SignURL returns a time-bounded download URL. URLs are regenerated per
// request and expire independently; two URLs for one handle resolve to the
// same blob.
func (s *DiskBlobStore) SignURL(handle string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(handle) == "" {
		return "", errors.New("handle is required")
	}
	token := s.signer.Sign(handle, s.now(), ttl)
	values := url.Values{}
	values.Set("token", token)
	return fmt.Sprintf("/media/files/%s?%s", handle, values.Encode()), nil
}

// VerifyToken checks a download token against a handle.
func (s *DiskBlobStore) VerifyToken(handle, token string) error {
	return s.signer.Verify(handle, token, s.now())
}

// Open opens the blob for streaming to a client.
func (s *DiskBlobStore) Open(handle string) (*os.File, error) {
	target, err := s.resolvePath(handle)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %s is unavailable", handle)
		}
		return nil, fmt.Errorf("open blob %s: %w", handle, err)
	}
	return file, nil
}

func (s *DiskBlobStore) resolvePath(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", errors.New("handle is required")
	}
	target := filepath.Join(s.baseDir, filepath.FromSlash(handle))
	if !strings.HasPrefix(target, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("handle %q escapes blob directory", handle)
	}
	return target, nil
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			builder.WriteRune(r)
		case r == ' ':
			builder.WriteRune('-')
		default:
			builder.WriteRune('-')
		}
	}
	return strings.Trim(builder.String(), "-.")
}

type urlSigner struct {
	secret []byte
}

func newURLSigner(secret []byte) *urlSigner {
	if len(secret) == 0 {
		secret = []byte(uuid.New().String())
	}
	return &urlSigner{secret: secret}
}

func (s *urlSigner) Sign(handle string, now time.Time, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	expires := now.Add(ttl).Unix()
	payload := fmt.Sprintf("%s|%d", handle, expires)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	raw := fmt.Sprintf("%s|%s", payload, signature)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func (s *urlSigner) Verify(handle, token string, now time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("missing download token")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	parts := strings.Split(string(decoded), "|")
	if len(parts) != 3 {
		return errors.New("invalid token format")
	}
	if parts[0] != handle {
		return errors.New("token does not match handle")
	}
	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token expiration: %w", err)
	}
	if now.Unix() > expires {
		return errors.New("download token expired")
	}
	payload := fmt.Sprintf("%s|%s", parts[0], parts[1])
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	expected := mac.Sum(nil)
	provided, err := hex.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("invalid token signature: %w", err)
	}
	if !hmac.Equal(expected, provided) {
		return errors.New("invalid download token")
	}
	return nil
}
