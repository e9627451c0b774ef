package report

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"textile-backoffice/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the xlsx exports.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the report service.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/parties"):
		h.handleParties(w, r)
		return
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/sales"):
		h.handleSales(w, r)
		return
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
}

func (h *Handler) handleParties(w http.ResponseWriter, r *http.Request) {
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

	export, err := h.service.ExportParties(r.Context(), kind, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAttachment(w, export)
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
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

	export, err := h.service.ExportSales(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAttachment(w, export)
}

func writeAttachment(w http.ResponseWriter, export Export) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
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
