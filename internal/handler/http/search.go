package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	"github.com/Laziz6066/Tafakkur-test/internal/service"
	"github.com/Laziz6066/Tafakkur-test/pkg/httputil"
)

// SearchHandler handles HTTP requests for search and autocomplete endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

func writeInvalidParameter(w http.ResponseWriter, param, reason string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: param + " " + reason,
		},
	})
}

// parseSearchQuery validates the query string strictly: any malformed
// numeric parameter rejects the request before it can reach the engine.
// Returns nil when a 400 was already written.
func parseSearchQuery(w http.ResponseWriter, r *http.Request) *domain.SearchQuery {
	params := r.URL.Query()

	query := &domain.SearchQuery{
		Query: strings.TrimSpace(params.Get("q")),
		Sort:  params.Get("sort"),
	}

	if raw := params.Get("category"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
			if err != nil || id <= 0 {
				writeInvalidParameter(w, "category", "must be a comma-separated list of positive integers")
				return nil
			}
			query.CategoryIDs = append(query.CategoryIDs, id)
		}
	}

	if raw := params.Get("price_min"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			writeInvalidParameter(w, "price_min", "must be a non-negative number")
			return nil
		}
		query.PriceMin = &price
	}

	if raw := params.Get("price_max"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			writeInvalidParameter(w, "price_max", "must be a non-negative number")
			return nil
		}
		query.PriceMax = &price
	}

	if raw := params.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeInvalidParameter(w, "page", "must be a positive integer")
			return nil
		}
		query.Page = page
	}

	if raw := params.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			writeInvalidParameter(w, "page_size", "must be a positive integer")
			return nil
		}
		query.PageSize = size
	}

	return query
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := parseSearchQuery(w, r)
	if query == nil {
		return
	}

	page, err := h.service.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// Suggest handles GET /api/v1/suggest
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	size := 0
	if raw := params.Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeInvalidParameter(w, "size", "must be a positive integer")
			return
		}
		size = parsed
	}

	suggestions, err := h.service.Suggest(r.Context(), params.Get("q"), size)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, suggestions)
}

// Reindex handles POST /api/v1/search/reindex
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Reindex(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]int{"indexed": count},
	})
}
