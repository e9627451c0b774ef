package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"textile-backoffice/internal/domain"
	"textile-backoffice/internal/media"
)

// Handler exposes orders and products over HTTP. Both collections share the
// handler; the path decides which one a request addresses.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.Contains(r.URL.Path, "/orders"):
		h.serveOrders(w, r)
	case strings.Contains(r.URL.Path, "/products"):
		h.serveProducts(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) serveOrders(w http.ResponseWriter, r *http.Request) {
	id, hasID := idFromPath(r.URL.Path)
	switch {
	case r.Method == http.MethodGet && hasID:
		order, err := h.service.GetOrder(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": order})
	case r.Method == http.MethodGet:
		h.handleListOrders(w, r)
	case r.Method == http.MethodPost:
		h.handleCreateOrder(w, r)
	case r.Method == http.MethodPut && hasID:
		h.handleUpdateOrder(w, r, id)
	case r.Method == http.MethodDelete && hasID:
		warning, err := h.service.DeleteOrder(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "warning": warning.Message()})
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) serveProducts(w http.ResponseWriter, r *http.Request) {
	id, hasID := idFromPath(r.URL.Path)
	switch {
	case r.Method == http.MethodGet && hasID:
		product, err := h.service.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": product})
	case r.Method == http.MethodGet:
		h.handleListProducts(w, r)
	case r.Method == http.MethodPost:
		h.handleCreateProduct(w, r)
	case r.Method == http.MethodPut && hasID:
		h.handleUpdateProduct(w, r, id)
	case r.Method == http.MethodDelete && hasID:
		warning, err := h.service.DeleteProduct(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "warning": warning.Message()})
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.OrderFilter{
		Types:   splitValues(query["type"]),
		Samples: splitValues(query["sample"]),
		Stages:  splitValues(query["stage"]),
		Search:  strings.TrimSpace(query.Get("search")),
	}
	var err error
	if filter.TargetFrom, err = parseDate(query.Get("targetFrom")); err != nil {
		http.Error(w, fmt.Sprintf("invalid targetFrom: %v", err), http.StatusBadRequest)
		return
	}
	if filter.TargetTo, err = parseDate(query.Get("targetTo")); err != nil {
		http.Error(w, fmt.Sprintf("invalid targetTo: %v", err), http.StatusBadRequest)
		return
	}

	limit, offset, err := parsePagination(query.Get("limit"), query.Get("offset"), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.ListOrders(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		Ranges:     splitValues(query["range"]),
		Categories: splitValues(query["category"]),
		Colors:     splitValues(query["color"]),
		Sizes:      splitValues(query["size"]),
		Search:     strings.TrimSpace(query.Get("search")),
	}
	if raw := strings.TrimSpace(query.Get("supplierId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid supplierId: %v", err), http.StatusBadRequest)
			return
		}
		filter.SupplierID = &id
	}

	limit, offset, err := parsePagination(query.Get("limit"), query.Get("offset"), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.ListProducts(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	input, err := orderInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateOrder(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	input, err := orderInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, warning, err := h.service.UpdateOrder(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": updated, "warning": warning.Message()})
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	input, err := productInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	input, err := productInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, warning, err := h.service.UpdateProduct(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": updated, "warning": warning.Message()})
}

func orderInputFromForm(r *http.Request) (OrderInput, error) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return OrderInput{}, fmt.Errorf("invalid form data: %v", err)
	}

	input := OrderInput{
		OrderType:   strings.TrimSpace(r.FormValue("type")),
		Sample:      strings.TrimSpace(r.FormValue("sample")),
		Stage:       strings.TrimSpace(r.FormValue("stage")),
		Description: r.FormValue("description"),
		ProductName: strings.TrimSpace(r.FormValue("productName")),
	}

	var err error
	if input.CustomerID, err = parseOptionalUUID(r.FormValue("customerId")); err != nil {
		return OrderInput{}, fmt.Errorf("invalid customerId: %v", err)
	}
	if input.SupplierID, err = parseOptionalUUID(r.FormValue("supplierId")); err != nil {
		return OrderInput{}, fmt.Errorf("invalid supplierId: %v", err)
	}
	if input.TargetDate, err = parseDate(r.FormValue("targetDate")); err != nil {
		return OrderInput{}, fmt.Errorf("invalid targetDate: %v", err)
	}
	if err := decodeFormJSON(r.FormValue("retainedGallery"), &input.RetainedGallery); err != nil {
		return OrderInput{}, fmt.Errorf("invalid retainedGallery: %v", err)
	}
	if err := decodeFormJSON(r.FormValue("galleryNotes"), &input.GalleryNotes); err != nil {
		return OrderInput{}, fmt.Errorf("invalid galleryNotes: %v", err)
	}
	if input.NewGallery, err = readFiles(r.MultipartForm.File["gallery"]); err != nil {
		return OrderInput{}, err
	}
	return input, nil
}

func productInputFromForm(r *http.Request) (ProductInput, error) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return ProductInput{}, fmt.Errorf("invalid form data: %v", err)
	}

	input := ProductInput{
		Name: strings.TrimSpace(r.FormValue("name")),
	}

	raw := strings.TrimSpace(r.FormValue("supplierId"))
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ProductInput{}, fmt.Errorf("invalid supplierId: %v", err)
		}
		input.SupplierID = id
	}
	if err := decodeFormJSON(r.FormValue("facets"), &input.Facets); err != nil {
		return ProductInput{}, fmt.Errorf("invalid facets: %v", err)
	}
	if err := decodeFormJSON(r.FormValue("retainedImages"), &input.RetainedImages); err != nil {
		return ProductInput{}, fmt.Errorf("invalid retainedImages: %v", err)
	}
	if err := decodeFormJSON(r.FormValue("imageNotes"), &input.ImageNotes); err != nil {
		return ProductInput{}, fmt.Errorf("invalid imageNotes: %v", err)
	}
	var err error
	if input.NewImages, err = readFiles(r.MultipartForm.File["images"]); err != nil {
		return ProductInput{}, err
	}
	return input, nil
}

func idFromPath(path string) (uuid.UUID, bool) {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx == -1 || idx == len(trimmed)-1 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(trimmed[idx+1:])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

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
