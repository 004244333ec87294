package handlers

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calummcrae/showspin/internal/services"
)

func newWatchlistHandler() *WatchlistHandler {
	return NewWatchlistHandler(services.NewWatchlistService(nil), log.New(io.Discard, "", 0))
}

func TestWatchlistRequiresAuth(t *testing.T) {
	h := newWatchlistHandler()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestWatchlistAddValidation(t *testing.T) {
	h := newWatchlistHandler()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed body", `not json`, `{"error":"Invalid request body"}`},
		{"missing show id", `{"show_name":"Severance"}`, `{"error":"tmdb_show_id and show_name are required"}`},
		{"missing show name", `{"tmdb_show_id":95396}`, `{"error":"tmdb_show_id and show_name are required"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Add(rec, authedRequest(http.MethodPost, "/api/watchlist", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestWatchlistUpdateStatusValidation(t *testing.T) {
	h := newWatchlistHandler()

	t.Run("invalid id", func(t *testing.T) {
		req := authedRequest(http.MethodPatch, "/api/watchlist/not-a-uuid", `{"status":"watching"}`)
		req.SetPathValue("id", "not-a-uuid")

		rec := httptest.NewRecorder()
		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid show ID"}`, rec.Body.String())
	})

	t.Run("invalid status", func(t *testing.T) {
		id := "0b4fdbd8-55b5-4b5d-b1f0-6e6b48bfe6f1"
		req := authedRequest(http.MethodPatch, "/api/watchlist/"+id, `{"status":"binging"}`)
		req.SetPathValue("id", id)

		rec := httptest.NewRecorder()
		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid status"}`, rec.Body.String())
	})
}

func TestWatchlistContainsInvalidShowID(t *testing.T) {
	h := newWatchlistHandler()

	req := authedRequest(http.MethodGet, "/api/watchlist/contains/xyz", "")
	req.SetPathValue("tmdbShowId", "xyz")

	rec := httptest.NewRecorder()
	h.Contains(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid show ID"}`, rec.Body.String())
}

func TestWatchlistRemoveInvalidID(t *testing.T) {
	h := newWatchlistHandler()

	req := authedRequest(http.MethodDelete, "/api/watchlist/123", "")
	req.SetPathValue("id", "123")

	rec := httptest.NewRecorder()
	h.Remove(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
