package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calummcrae/showspin/internal/models"
)

// ErrAlreadySaved is returned when a show is already in the user's
// watchlist. Backed by the unique (user_id, tmdb_show_id) constraint.
var ErrAlreadySaved = errors.New("show already in watchlist")

const pgUniqueViolation = "23505"

// WatchlistService handles saved-show business logic
type WatchlistService struct {
	db *pgxpool.Pool
}

// NewWatchlistService creates a new WatchlistService
func NewWatchlistService(db *pgxpool.Pool) *WatchlistService {
	return &WatchlistService{db: db}
}

// List retrieves a user's watchlist, newest first
func (s *WatchlistService) List(ctx context.Context, userID uuid.UUID) ([]models.SavedShow, error) {
	query := `
		SELECT id, user_id, tmdb_show_id, show_name, poster_path, status, added_at
		FROM saved_shows
		WHERE user_id = $1
		ORDER BY added_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	shows := []models.SavedShow{}
	for rows.Next() {
		var show models.SavedShow
		err := rows.Scan(
			&show.ID,
			&show.UserID,
			&show.TmdbShowID,
			&show.ShowName,
			&show.PosterPath,
			&show.Status,
			&show.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved show: %w", err)
		}
		shows = append(shows, show)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}

	return shows, nil
}

// Add saves a show to the user's watchlist in the want_to_watch status
func (s *WatchlistService) Add(ctx context.Context, userID uuid.UUID, input models.AddSavedShowInput) (*models.SavedShow, error) {
	query := `
		INSERT INTO saved_shows (user_id, tmdb_show_id, show_name, poster_path, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, tmdb_show_id, show_name, poster_path, status, added_at
	`

	var show models.SavedShow
	err := s.db.QueryRow(ctx, query,
		userID,
		input.TmdbShowID,
		input.ShowName,
		input.PosterPath,
		models.StatusWantToWatch,
	).Scan(
		&show.ID,
		&show.UserID,
		&show.TmdbShowID,
		&show.ShowName,
		&show.PosterPath,
		&show.Status,
		&show.AddedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrAlreadySaved
		}
		return nil, fmt.Errorf("failed to add saved show: %w", err)
	}

	return &show, nil
}

// UpdateStatus moves a saved show to a new status
func (s *WatchlistService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.WatchStatus) (*models.SavedShow, error) {
	query := `
		UPDATE saved_shows
		SET status = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, tmdb_show_id, show_name, poster_path, status, added_at
	`

	var show models.SavedShow
	err := s.db.QueryRow(ctx, query, id, userID, status).Scan(
		&show.ID,
		&show.UserID,
		&show.TmdbShowID,
		&show.ShowName,
		&show.PosterPath,
		&show.Status,
		&show.AddedAt,
	)

	if err != nil {
		return nil, err
	}

	return &show, nil
}

// Remove deletes a saved show
func (s *WatchlistService) Remove(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM saved_shows WHERE id = $1 AND user_id = $2`

	result, err := s.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to remove saved show: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Contains reports whether the user has already saved the given TMDB show
func (s *WatchlistService) Contains(ctx context.Context, userID uuid.UUID, tmdbShowID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM saved_shows WHERE user_id = $1 AND tmdb_show_id = $2)`

	var exists bool
	if err := s.db.QueryRow(ctx, query, userID, tmdbShowID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check watchlist: %w", err)
	}

	return exists, nil
}
