package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// TMDBService handles interactions with The Movie Database API
type TMDBService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// TMDBConfig holds TMDB service configuration
type TMDBConfig struct {
	APIKey  string
	BaseURL string
}

// NewTMDBService creates a new TMDB service
func NewTMDBService(cfg TMDBConfig) *TMDBService {
	return &TMDBService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
	}
}

// APIError is returned for any non-2xx response from TMDB. Callers treat
// 4xx and 5xx alike; the status code is kept for logging.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb: %s returned status %d", e.Endpoint, e.StatusCode)
}

// TMDBShow represents a TV show as returned by TMDB listing endpoints
type TMDBShow struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	FirstAirDate string  `json:"first_air_date"`
	GenreIDs     []int   `json:"genre_ids"`
}

// Genre is a TMDB genre id/name pair
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TMDBShowDetails represents the full detail record for one show
type TMDBShowDetails struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Overview        string  `json:"overview"`
	PosterPath      *string `json:"poster_path"`
	VoteAverage     float64 `json:"vote_average"`
	FirstAirDate    string  `json:"first_air_date"`
	Genres          []Genre `json:"genres"`
	EpisodeRunTime  []int   `json:"episode_run_time"`
	NumberOfSeasons int     `json:"number_of_seasons"`
}

// WatchProvider is a single streaming provider entry
type WatchProvider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type tmdbListResponse struct {
	Page         int        `json:"page"`
	Results      []TMDBShow `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

type tmdbProvidersResponse struct {
	Results map[string]struct {
		Flatrate []WatchProvider `json:"flatrate"`
	} `json:"results"`
}

// doRequest performs a single GET against the TMDB API. There are no
// retries; any failure is the caller's to surface.
func (s *TMDBService) doRequest(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s%s", s.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// TMDB listings change slowly; an intermediary cache may hold the
	// response for an hour.
	req.Header.Set("Cache-Control", "max-age=3600")

	q := req.URL.Query()
	q.Add("api_key", s.apiKey)
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	return body, nil
}

// Trending retrieves this week's trending TV shows
func (s *TMDBService) Trending(ctx context.Context) ([]TMDBShow, error) {
	body, err := s.doRequest(ctx, "/trending/tv/week", nil)
	if err != nil {
		return nil, err
	}

	var response tmdbListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trending shows: %w", err)
	}

	return response.Results, nil
}

// Popular retrieves one page of popular TV shows
func (s *TMDBService) Popular(ctx context.Context, page int) ([]TMDBShow, error) {
	if page < 1 {
		page = 1
	}

	body, err := s.doRequest(ctx, "/tv/popular", map[string]string{
		"page": strconv.Itoa(page),
	})
	if err != nil {
		return nil, err
	}

	var response tmdbListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal popular shows: %w", err)
	}

	return response.Results, nil
}

// ShowDetails retrieves the full detail record for a show
func (s *TMDBService) ShowDetails(ctx context.Context, id int) (*TMDBShowDetails, error) {
	body, err := s.doRequest(ctx, fmt.Sprintf("/tv/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var details TMDBShowDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal show details: %w", err)
	}

	return &details, nil
}

// FlatrateProviders retrieves the subscription streaming providers for a
// show in the given region. A region with no providers yields an empty
// list, not an error.
func (s *TMDBService) FlatrateProviders(ctx context.Context, id int, region string) ([]WatchProvider, error) {
	body, err := s.doRequest(ctx, fmt.Sprintf("/tv/%d/watch/providers", id), nil)
	if err != nil {
		return nil, err
	}

	var response tmdbProvidersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal watch providers: %w", err)
	}

	regional, ok := response.Results[region]
	if !ok || regional.Flatrate == nil {
		return []WatchProvider{}, nil
	}

	return regional.Flatrate, nil
}

// SearchTV searches TV shows by text query
func (s *TMDBService) SearchTV(ctx context.Context, query string) ([]TMDBShow, error) {
	body, err := s.doRequest(ctx, "/search/tv", map[string]string{
		"query": query,
	})
	if err != nil {
		return nil, err
	}

	var response tmdbListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}

	return response.Results, nil
}
