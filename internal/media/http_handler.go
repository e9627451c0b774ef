package media

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Handler streams stored blobs for signed URLs. The handle is everything after
// the /files/ segment; the token must verify against it.
type Handler struct {
	store *DiskBlobStore
}

// NewHTTPHandler wraps the disk store with a GET endpoint.
func NewHTTPHandler(store *DiskBlobStore) http.Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	marker := "/files/"
	idx := strings.Index(r.URL.Path, marker)
	if idx == -1 || idx+len(marker) >= len(r.URL.Path) {
		http.Error(w, "missing file handle", http.StatusBadRequest)
		return
	}
	handle := strings.TrimSuffix(r.URL.Path[idx+len(marker):], "/")

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if err := h.store.VerifyToken(handle, token); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	file, err := h.store.Open(handle)
	if err != nil {
		http.Error(w, fmt.Sprintf("file not found: %v", err), http.StatusNotFound)
		return
	}
	defer file.Close()

	filename := filepath.Base(handle)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filename))

	modTime := time.Time{}
	if info, statErr := file.Stat(); statErr == nil {
		modTime = info.ModTime()
	}
	http.ServeContent(w, r, filename, modTime, file)
}
