package party

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/media"
)

// Handler exposes the party lifecycle over HTTP. Create and update are
// multipart submissions so the record fields and the media files travel in one
// request.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/areas"):
		h.handleAreas(w, r)
		return
	case r.Method == http.MethodGet && hasIDSegment(r.URL.Path):
		h.handleGet(w, r)
		return
	case r.Method == http.MethodGet:
		h.handleList(w, r)
		return
	case r.Method == http.MethodPost:
		h.handleCreate(w, r)
		return
	case r.Method == http.MethodPut && hasIDSegment(r.URL.Path):
		h.handleUpdate(w, r)
		return
	case r.Method == http.MethodDelete && hasIDSegment(r.URL.Path):
		h.handleDelete(w, r)
		return
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
}

type partyResponse struct {
	Data    domain.Party `json:"data"`
	Warning string       `json:"warning,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	kind, ok := domain.ParsePartyKind(query.Get("kind"))
	if !ok {
		http.Error(w, fmt.Sprintf("invalid kind %q", query.Get("kind")), http.StatusBadRequest)
		return
	}

	filter := domain.PartyFilter{
		WorkTypes:     splitValues(query["workType"]),
		Colors:        splitValues(query["color"]),
		Sizes:         splitValues(query["size"]),
		PaymentCycles: splitValues(query["paymentCycle"]),
		Ranges:        splitValues(query["range"]),
		Search:        strings.TrimSpace(query.Get("search")),
		OrderStage:    strings.TrimSpace(query.Get("orderStage")),
	}

	limit, offset, err := parsePagination(query.Get("limit"), query.Get("offset"), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.List(r.Context(), kind, filter, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	party, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partyResponse{Data: party})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	kind, ok := domain.ParsePartyKind(r.FormValue("kind"))
	if !ok {
		http.Error(w, fmt.Sprintf("invalid kind %q", r.FormValue("kind")), http.StatusBadRequest)
		return
	}

	input := CreateInput{
		Kind:    kind,
		Name:    strings.TrimSpace(r.FormValue("name")),
		Company: strings.TrimSpace(r.FormValue("company")),
		Mobile:  strings.TrimSpace(r.FormValue("mobile")),
		TaxID:   strings.TrimSpace(r.FormValue("taxId")),
		Notes:   r.FormValue("notes"),
	}
	if err := decodeFormJSON(r.FormValue("facets"), &input.Facets); err != nil {
		http.Error(w, fmt.Sprintf("invalid facets: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("address"), &input.Address); err != nil {
		http.Error(w, fmt.Sprintf("invalid address: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("documentNotes"), &input.DocumentNotes); err != nil {
		http.Error(w, fmt.Sprintf("invalid documentNotes: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("galleryNotes"), &input.GalleryNotes); err != nil {
		http.Error(w, fmt.Sprintf("invalid galleryNotes: %v", err), http.StatusBadRequest)
		return
	}

	var err error
	if input.Documents, err = readFiles(r.MultipartForm.File["documents"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.Gallery, err = readFiles(r.MultipartForm.File["gallery"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, partyResponse{Data: created})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	input := UpdateInput{
		ID:      id,
		Name:    strings.TrimSpace(r.FormValue("name")),
		Company: strings.TrimSpace(r.FormValue("company")),
		Mobile:  strings.TrimSpace(r.FormValue("mobile")),
		TaxID:   strings.TrimSpace(r.FormValue("taxId")),
		Notes:   r.FormValue("notes"),
	}
	if err := decodeFormJSON(r.FormValue("facets"), &input.Facets); err != nil {
		http.Error(w, fmt.Sprintf("invalid facets: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("address"), &input.AddressPatch); err != nil {
		http.Error(w, fmt.Sprintf("invalid address: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("retainedDocuments"), &input.RetainedDocuments); err != nil {
		http.Error(w, fmt.Sprintf("invalid retainedDocuments: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("retainedGallery"), &input.RetainedGallery); err != nil {
		http.Error(w, fmt.Sprintf("invalid retainedGallery: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("documentNotes"), &input.DocumentNotes); err != nil {
		http.Error(w, fmt.Sprintf("invalid documentNotes: %v", err), http.StatusBadRequest)
		return
	}
	if err := decodeFormJSON(r.FormValue("galleryNotes"), &input.GalleryNotes); err != nil {
		http.Error(w, fmt.Sprintf("invalid galleryNotes: %v", err), http.StatusBadRequest)
		return
	}

	if input.NewDocuments, err = readFiles(r.MultipartForm.File["documents"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.NewGallery, err = readFiles(r.MultipartForm.File["gallery"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, warning, err := h.service.Update(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partyResponse{Data: updated, Warning: warning.Message()})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	warning, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"warning": warning.Message(),
	})
}

func (h *Handler) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.service.Areas(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": areas})
}

// hasIDSegment reports whether the path ends in a uuid-shaped segment rather
// than the collection root.
func hasIDSegment(path string) bool {
	_, err := idFromPath(path)
	return err == nil
}

func idFromPath(path string) (uuid.UUID, error) {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx == -1 || idx == len(trimmed)-1 {
		return uuid.Nil, fmt.Errorf("missing party identifier")
	}
	id, err := uuid.Parse(trimmed[idx+1:])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid party identifier: %v", err)
	}
	return id, nil
}

// splitValues flattens repeated and comma-separated query parameters into one
// trimmed list.
func splitValues(values []string) []string {
	var result []string
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

func parsePagination(limitRaw, offsetRaw string, defaultLimit int) (int, int, error) {
	limit := defaultLimit
	if raw := strings.TrimSpace(limitRaw); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		limit = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(offsetRaw); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("offset must be zero or positive")
		}
		offset = parsed
	}
	return limit, offset, nil
}

func decodeFormJSON(raw string, target any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), target)
}

func readFiles(headers []*multipart.FileHeader) ([]media.RawFile, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	files := make([]media.RawFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %v", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %v", header.Filename, err)
		}
		files = append(files, media.RawFile{Name: header.Filename, Data: data})
	}
	return files, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
