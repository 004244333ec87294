package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchStatus tracks where a saved show sits in the user's queue.
type WatchStatus string

const (
	StatusWantToWatch WatchStatus = "want_to_watch"
	StatusWatching    WatchStatus = "watching"
	StatusDropped     WatchStatus = "dropped"
)

// IsValid checks if the status is one of the known values.
func (s WatchStatus) IsValid() bool {
	return s == StatusWantToWatch || s == StatusWatching || s == StatusDropped
}

// SavedShow represents one watchlist row. A user can save a given TMDB
// show at most once.
type SavedShow struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	UserID     uuid.UUID   `db:"user_id" json:"user_id"`
	TmdbShowID int         `db:"tmdb_show_id" json:"tmdb_show_id"`
	ShowName   string      `db:"show_name" json:"show_name"`
	PosterPath *string     `db:"poster_path" json:"poster_path"`
	Status     WatchStatus `db:"status" json:"status"`
	AddedAt    time.Time   `db:"added_at" json:"added_at"`
}

// AddSavedShowInput represents the input for saving a show. New rows start
// in the want_to_watch status.
type AddSavedShowInput struct {
	TmdbShowID int     `json:"tmdb_show_id"`
	ShowName   string  `json:"show_name"`
	PosterPath *string `json:"poster_path"`
}

// UpdateSavedShowInput represents the input for moving a saved show to a
// different status.
type UpdateSavedShowInput struct {
	Status WatchStatus `json:"status"`
}
