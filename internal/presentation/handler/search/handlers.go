package search

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Phantasm0009/search-party/internal/infrastructure/json"
	"github.com/Phantasm0009/search-party/internal/infrastructure/searchapi"
)

type Handler struct {
	client *searchapi.Client
}

func NewHandler(client *searchapi.Client) *Handler {
	return &Handler{
		client: client,
	}
}

// SearchHandler godoc
// @Summary      Run a web search
// @Description  Proxies the query to the configured search provider and returns normalized results
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        request body searchRequest true "Search parameters"
// @Success      200 {object} searchapi.Response "Search results"
// @Failure      400 {object} map[string]interface{} "Bad request - empty query"
// @Failure      501 {object} map[string]interface{} "Search provider not configured"
// @Failure      502 {object} map[string]interface{} "Search provider error"
// @Router       /search [post]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		json.WriteBadRequestError(w, "Query is required")
		return
	}

	resp, err := h.client.Search(r.Context(), query, req.Start, req.Num)
	if err != nil {
		switch {
		case errors.Is(err, searchapi.ErrNotConfigured):
			json.WriteError(w, http.StatusNotImplemented, err, "Search API not configured")
		case errors.Is(err, searchapi.ErrProvider):
			log.Printf("Search provider error: %v", err)
			json.WriteError(w, http.StatusBadGateway, err, "Search failed")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, resp)
}
