package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/calummcrae/showspin/internal/services"
)

const (
	maxSearchResults = 10
	maxDetailIDs     = 20
	defaultRegion    = "GB"
)

// ShowHandler handles show discovery requests
type ShowHandler struct {
	showService *services.ShowService
	logger      *log.Logger
}

// NewShowHandler creates a new show handler
func NewShowHandler(showService *services.ShowService, logger *log.Logger) *ShowHandler {
	return &ShowHandler{
		showService: showService,
		logger:      logger,
	}
}

// Random handles GET /api/shows
func (h *ShowHandler) Random(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	mode := services.Mode(query.Get("mode"))
	genreID := 0
	if g := query.Get("genre"); g != "" {
		// A malformed genre simply applies no genre filter.
		genreID, _ = strconv.Atoi(g)
	}

	// Trending membership is computed up front so the final pick can be
	// tagged without re-fetching.
	trendingIDs, err := h.showService.TrendingIDs(r.Context())
	if err != nil {
		h.logger.Printf("Failed to fetch trending ids: %v", err)
		http.Error(w, `{"error":"Failed to fetch shows"}`, http.StatusInternalServerError)
		return
	}

	show, err := h.showService.RandomShow(r.Context(), mode, genreID, trendingIDs)
	if err != nil {
		h.logger.Printf("Failed to pick show: %v", err)
		http.Error(w, `{"error":"Failed to fetch shows"}`, http.StatusInternalServerError)
		return
	}

	// No candidate surviving the filters is a normal outcome, not a fault.
	if show == nil {
		http.Error(w, `{"error":"No shows found matching your criteria"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"show": show})
}

// searchResult is the reduced projection returned by the search endpoint
type searchResult struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	FirstAirDate string  `json:"first_air_date"`
}

// Search handles GET /api/shows/search
func (h *ShowHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	shows, err := h.showService.Search(r.Context(), query)
	if err != nil {
		h.logger.Printf("Search error: %v", err)
		http.Error(w, `{"error":"Failed to search shows"}`, http.StatusInternalServerError)
		return
	}

	if len(shows) > maxSearchResults {
		shows = shows[:maxSearchResults]
	}

	results := make([]searchResult, 0, len(shows))
	for _, show := range shows {
		results = append(results, searchResult{
			ID:           show.ID,
			Name:         show.Name,
			PosterPath:   show.PosterPath,
			FirstAirDate: show.FirstAirDate,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}

// Details handles GET /api/shows/details
func (h *ShowHandler) Details(w http.ResponseWriter, r *http.Request) {
	idsParam := r.URL.Query().Get("ids")
	region := r.URL.Query().Get("region")
	if region == "" {
		region = defaultRegion
	}

	if idsParam == "" {
		http.Error(w, `{"error":"ids parameter is required"}`, http.StatusBadRequest)
		return
	}

	var ids []int
	for _, part := range strings.Split(idsParam, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		http.Error(w, `{"error":"No valid IDs provided"}`, http.StatusBadRequest)
		return
	}
	if len(ids) > maxDetailIDs {
		http.Error(w, `{"error":"Maximum 20 IDs allowed"}`, http.StatusBadRequest)
		return
	}

	data := h.showService.ManyDetails(r.Context(), ids, region)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// Genres handles GET /api/genres
func (h *ShowHandler) Genres(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"genres": services.AllGenres})
}
