package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calummcrae/showspin/internal/models"
)

// RatingService handles per-user show ratings
type RatingService struct {
	db *pgxpool.Pool
}

// NewRatingService creates a new RatingService
func NewRatingService(db *pgxpool.Pool) *RatingService {
	return &RatingService{db: db}
}

// Save upserts a rating keyed on (user_id, tmdb_show_id); rating the same
// show twice replaces the previous score and refreshes rated_at.
func (s *RatingService) Save(ctx context.Context, userID uuid.UUID, tmdbShowID int, input models.SaveRatingInput) (*models.UserRating, error) {
	query := `
		INSERT INTO user_ratings (user_id, tmdb_show_id, score, liked, rated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, tmdb_show_id)
		DO UPDATE SET score = EXCLUDED.score, liked = EXCLUDED.liked, rated_at = EXCLUDED.rated_at
		RETURNING user_id, tmdb_show_id, score, liked, rated_at
	`

	var rating models.UserRating
	err := s.db.QueryRow(ctx, query, userID, tmdbShowID, input.Score, input.Liked).Scan(
		&rating.UserID,
		&rating.TmdbShowID,
		&rating.Score,
		&rating.Liked,
		&rating.RatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	return &rating, nil
}

// Get retrieves the user's rating for a show
func (s *RatingService) Get(ctx context.Context, userID uuid.UUID, tmdbShowID int) (*models.UserRating, error) {
	query := `
		SELECT user_id, tmdb_show_id, score, liked, rated_at
		FROM user_ratings
		WHERE user_id = $1 AND tmdb_show_id = $2
	`

	var rating models.UserRating
	err := s.db.QueryRow(ctx, query, userID, tmdbShowID).Scan(
		&rating.UserID,
		&rating.TmdbShowID,
		&rating.Score,
		&rating.Liked,
		&rating.RatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &rating, nil
}
