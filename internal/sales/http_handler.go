package sales

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"textile-backoffice/internal/domain"
)

// Handler exposes the sales aggregation as a read-only endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the aggregator with a GET endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	filter := domain.SalesFilter{
		Side:      domain.SalesSide(strings.ToLower(strings.TrimSpace(query.Get("type")))),
		OrderType: strings.TrimSpace(query.Get("orderType")),
		Stage:     strings.TrimSpace(query.Get("stage")),
		Search:    strings.TrimSpace(query.Get("search")),
	}

	for _, raw := range query["id"] {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			id, err := uuid.Parse(trimmed)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid id %q: %v", trimmed, err), http.StatusBadRequest)
				return
			}
			filter.PartyIDs = append(filter.PartyIDs, id)
		}
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

	page := 1
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		page = parsed
	}
	limit := 20
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	result, err := h.service.Aggregate(r.Context(), filter, page, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
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
