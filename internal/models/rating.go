package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRating is a per-user score for a TMDB show. Score and Liked are both
// optional so a thumbs-up can exist without a numeric score and vice versa.
type UserRating struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	TmdbShowID int       `db:"tmdb_show_id" json:"tmdb_show_id"`
	Score      *int      `db:"score" json:"score"`
	Liked      *bool     `db:"liked" json:"liked"`
	RatedAt    time.Time `db:"rated_at" json:"rated_at"`
}

// SaveRatingInput represents the input for rating a show. Saving replaces
// any previous rating for the same show.
type SaveRatingInput struct {
	Score *int  `json:"score"`
	Liked *bool `json:"liked"`
}
