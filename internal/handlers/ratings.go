package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/calummcrae/showspin/internal/middleware"
	"github.com/calummcrae/showspin/internal/models"
	"github.com/calummcrae/showspin/internal/services"
)

// RatingHandler handles rating requests
type RatingHandler struct {
	ratingService *services.RatingService
	logger        *log.Logger
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService *services.RatingService, logger *log.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		logger:        logger,
	}
}

// Save handles PUT /api/ratings/{tmdbShowId}
func (h *RatingHandler) Save(w http.ResponseWriter, r *http.Request) {
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

	var input models.SaveRatingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if input.Score != nil && (*input.Score < 1 || *input.Score > 10) {
		http.Error(w, `{"error":"Score must be between 1 and 10"}`, http.StatusBadRequest)
		return
	}

	rating, err := h.ratingService.Save(r.Context(), userID, tmdbShowID, input)
	if err != nil {
		h.logger.Printf("Failed to save rating: %v", err)
		http.Error(w, `{"error":"Failed to save rating"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"rating": rating})
}

// Get handles GET /api/ratings/{tmdbShowId}
func (h *RatingHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	rating, err := h.ratingService.Get(r.Context(), userID, tmdbShowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"Rating not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Printf("Failed to get rating: %v", err)
		http.Error(w, `{"error":"Failed to fetch rating"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"rating": rating})
}
