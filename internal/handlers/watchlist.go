package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/calummcrae/showspin/internal/middleware"
	"github.com/calummcrae/showspin/internal/models"
	"github.com/calummcrae/showspin/internal/services"
)

// WatchlistHandler handles watchlist requests
type WatchlistHandler struct {
	watchlistService *services.WatchlistService
	logger           *log.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlistService *services.WatchlistService, logger *log.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		logger:           logger,
	}
}

// List handles GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	shows, err := h.watchlistService.List(r.Context(), userID)
	if err != nil {
		h.logger.Printf("Failed to list watchlist: %v", err)
		http.Error(w, `{"error":"Failed to fetch watchlist"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"shows": shows})
}

// Add handles POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var input models.AddSavedShowInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if input.TmdbShowID <= 0 || input.ShowName == "" {
		http.Error(w, `{"error":"tmdb_show_id and show_name are required"}`, http.StatusBadRequest)
		return
	}

	show, err := h.watchlistService.Add(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, services.ErrAlreadySaved) {
			http.Error(w, `{"error":"Show is already in your watchlist"}`, http.StatusConflict)
			return
		}
		h.logger.Printf("Failed to add to watchlist: %v", err)
		http.Error(w, `{"error":"Failed to add show to watchlist"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"show": show})
}

// Contains handles GET /api/watchlist/contains/{tmdbShowId}
func (h *WatchlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	tmdbShowID, err := strconv.Atoi(r.PathValue("tmdbShowId"))
	if err != nil || tmdbShowID <= 0 {
		http.Error(w, `{"error":"Invalid show ID"}`, http.StatusBadRequest)
		return
	}

	saved, err := h.watchlistService.Contains(r.Context(), userID, tmdbShowID)
	if err != nil {
		h.logger.Printf("Failed to check watchlist: %v", err)
		http.Error(w, `{"error":"Failed to check watchlist"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"saved": saved})
}

// UpdateStatus handles PATCH /api/watchlist/{id}
func (h *WatchlistHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"Invalid show ID"}`, http.StatusBadRequest)
		return
	}

	var input models.UpdateSavedShowInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if !input.Status.IsValid() {
		http.Error(w, `{"error":"Invalid status"}`, http.StatusBadRequest)
		return
	}

	show, err := h.watchlistService.UpdateStatus(r.Context(), id, userID, input.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"Show not found in your watchlist"}`, http.StatusNotFound)
			return
		}
		h.logger.Printf("Failed to update watchlist status: %v", err)
		http.Error(w, `{"error":"Failed to update status"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"show": show})
}

// Remove handles DELETE /api/watchlist/{id}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"Invalid show ID"}`, http.StatusBadRequest)
		return
	}

	if err := h.watchlistService.Remove(r.Context(), id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"Show not found in your watchlist"}`, http.StatusNotFound)
			return
		}
		h.logger.Printf("Failed to remove from watchlist: %v", err)
		http.Error(w, `{"error":"Failed to remove show"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
