package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRequestAddsAPIKeyAndCacheHint(t *testing.T) {
	var gotKey, gotCacheControl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Write([]byte(`{"page":1,"results":[],"total_pages":1,"total_results":0}`))
	}))
	defer srv.Close()

	svc := NewTMDBService(TMDBConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := svc.Trending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "max-age=3600", gotCacheControl)
}

func TestDoRequestNon2xxReturnsAPIError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewTMDBService(TMDBConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := svc.ShowDetails(context.Background(), 42)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	// A failed call is not retried.
	assert.Equal(t, 1, calls)
}

func TestPopularSendsPageParam(t *testing.T) {
	var gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		w.Write([]byte(`{"page":2,"results":[{"id":7,"name":"Seven"}],"total_pages":2,"total_results":1}`))
	}))
	defer srv.Close()

	svc := NewTMDBService(TMDBConfig{APIKey: "test-key", BaseURL: srv.URL})

	shows, err := svc.Popular(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, 7, shows[0].ID)
	assert.Equal(t, "2", gotPage)
}

func TestFlatrateProvidersMissingRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"US":{"flatrate":[{"provider_id":8,"provider_name":"Netflix","logo_path":"/n.png"}]}}}`))
	}))
	defer srv.Close()

	svc := NewTMDBService(TMDBConfig{APIKey: "test-key", BaseURL: srv.URL})

	providers, err := svc.FlatrateProviders(context.Background(), 1, "GB")
	require.NoError(t, err)
	assert.NotNil(t, providers)
	assert.Empty(t, providers)

	providers, err = svc.FlatrateProviders(context.Background(), 1, "US")
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "Netflix", providers[0].ProviderName)
}
