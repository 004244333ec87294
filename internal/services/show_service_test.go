package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func show(id int, rating float64, genreIDs ...int) TMDBShow {
	return TMDBShow{
		ID:          id,
		Name:        fmt.Sprintf("Show %d", id),
		VoteAverage: rating,
		GenreIDs:    genreIDs,
	}
}

// fakeTMDB serves canned TMDB responses and counts requests per endpoint.
type fakeTMDB struct {
	srv *httptest.Server

	mu    sync.Mutex
	calls map[string]int

	trending    []TMDBShow
	popular     map[string][]TMDBShow
	details     map[string]TMDBShowDetails
	failDetails map[string]bool
	providers   map[string][]WatchProvider
	search      []TMDBShow
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	t.Helper()

	f := &fakeTMDB{
		calls:       make(map[string]int),
		popular:     make(map[string][]TMDBShow),
		details:     make(map[string]TMDBShowDetails),
		failDetails: make(map[string]bool),
		providers:   make(map[string][]WatchProvider),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /trending/tv/week", func(w http.ResponseWriter, r *http.Request) {
		f.count("trending")
		writeList(w, f.trending)
	})
	mux.HandleFunc("GET /tv/popular", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		f.count("popular:" + page)
		writeList(w, f.popular[page])
	})
	mux.HandleFunc("GET /tv/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.count("details:" + id)
		if f.failDetails[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(f.details[id])
	})
	mux.HandleFunc("GET /tv/{id}/watch/providers", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.count("providers:" + id)
		json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"GB": map[string]any{"flatrate": f.providers[id]},
			},
		})
	})
	mux.HandleFunc("GET /search/tv", func(w http.ResponseWriter, r *http.Request) {
		f.count("search")
		writeList(w, f.search)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTMDB) count(key string) {
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
}

func (f *fakeTMDB) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeTMDB) service() *ShowService {
	return NewShowService(NewTMDBService(TMDBConfig{APIKey: "test-key", BaseURL: f.srv.URL}))
}

func writeList(w http.ResponseWriter, shows []TMDBShow) {
	if shows == nil {
		shows = []TMDBShow{}
	}
	json.NewEncoder(w).Encode(map[string]any{
		"page":          1,
		"results":       shows,
		"total_pages":   1,
		"total_results": len(shows),
	})
}

func TestFilterByRating(t *testing.T) {
	shows := []TMDBShow{
		show(1, 5.9, 18),
		show(2, 6.0, 18),
		show(3, 8.4, 18),
	}

	out := filterByRating(shows)

	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].ID)
	assert.Equal(t, 3, out[1].ID)
}

func TestFilterByMode(t *testing.T) {
	shows := []TMDBShow{
		show(1, 7, 35),        // Comedy
		show(2, 7, 18),        // Drama
		show(3, 7, 18, 10764), // Drama + Reality
		show(4, 7),            // untagged
	}

	t.Run("food restricts to the allow list", func(t *testing.T) {
		out := filterByMode(shows, ModeFood)
		require.Len(t, out, 2)
		assert.Equal(t, 1, out[0].ID)
		assert.Equal(t, 3, out[1].ID)
	})

	t.Run("freetime passes everything through", func(t *testing.T) {
		assert.Equal(t, shows, filterByMode(shows, ModeFreetime))
	})

	t.Run("unset mode passes everything through", func(t *testing.T) {
		assert.Equal(t, shows, filterByMode(shows, ModeNone))
	})
}

func TestFilterByGenre(t *testing.T) {
	shows := []TMDBShow{
		show(1, 7, 35),
		show(2, 7, 18),
		show(3, 7, 35, 18),
	}

	out := filterByGenre(shows, 18)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].ID)
	assert.Equal(t, 3, out[1].ID)

	assert.Equal(t, shows, filterByGenre(shows, 0))
}

func TestDedupeByID(t *testing.T) {
	first := show(1, 7, 35)
	first.Name = "First"
	last := show(1, 8, 18)
	last.Name = "Last"

	out := dedupeByID([]TMDBShow{first, show(2, 7), last, show(3, 7)})

	// A duplicate keeps its original position but the later payload wins.
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "Last", out[0].Name)
	assert.Equal(t, 2, out[1].ID)
	assert.Equal(t, 3, out[2].ID)
}

func TestPickRandom(t *testing.T) {
	assert.Nil(t, pickRandom(nil))
	assert.Nil(t, pickRandom([]TMDBShow{}))

	shows := []TMDBShow{show(1, 7), show(2, 7), show(3, 7), show(4, 7), show(5, 7)}

	counts := make(map[int]int)
	for range 5000 {
		picked := pickRandom(shows)
		require.NotNil(t, picked)
		counts[picked.ID]++
	}

	// Loose uniformity check: each of the five shows should land near 1000
	// draws out of 5000.
	for id := 1; id <= 5; id++ {
		assert.Greater(t, counts[id], 850, "show %d drawn too rarely", id)
		assert.Less(t, counts[id], 1150, "show %d drawn too often", id)
	}
}

func TestTrendingIDs(t *testing.T) {
	f := newFakeTMDB(t)
	f.trending = []TMDBShow{show(1, 7, 35), show(2, 8, 18)}

	ids, err := f.service().TrendingIDs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[int]struct{}{1: {}, 2: {}}, ids)
}

func TestRandomShow(t *testing.T) {
	f := newFakeTMDB(t)
	f.trending = []TMDBShow{show(1, 7.5, 35)}
	f.popular["1"] = []TMDBShow{show(2, 8.0, 18)}
	f.popular["2"] = []TMDBShow{show(3, 5.0, 18)} // below the rating floor
	f.details["1"] = TMDBShowDetails{ID: 1, Name: "Show 1", Genres: []Genre{{ID: 35, Name: "Comedy"}}, NumberOfSeasons: 3}
	f.details["2"] = TMDBShowDetails{ID: 2, Name: "Show 2", Genres: []Genre{{ID: 18, Name: "Drama"}}, NumberOfSeasons: 1}

	svc := f.service()
	ctx := context.Background()

	trendingIDs, err := svc.TrendingIDs(ctx)
	require.NoError(t, err)

	t.Run("trending pick is tagged", func(t *testing.T) {
		got, err := svc.RandomShow(ctx, ModeNone, 35, trendingIDs)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, got.ID)
		assert.Equal(t, "Show 1", got.Name)
		assert.Equal(t, 3, got.NumberOfSeasons)
		assert.True(t, got.IsTrending)
	})

	t.Run("popular pick is not tagged", func(t *testing.T) {
		got, err := svc.RandomShow(ctx, ModeNone, 18, trendingIDs)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 2, got.ID)
		assert.False(t, got.IsTrending)
	})

	t.Run("no match returns nil without error", func(t *testing.T) {
		got, err := svc.RandomShow(ctx, ModeFood, 99, trendingIDs)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestRandomShowUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewShowService(NewTMDBService(TMDBConfig{APIKey: "test-key", BaseURL: srv.URL}))

	_, err := svc.RandomShow(context.Background(), ModeNone, 0, nil)
	require.Error(t, err)
}

func TestManyDetails(t *testing.T) {
	f := newFakeTMDB(t)
	f.details["1"] = TMDBShowDetails{ID: 1, Name: "Show 1", Overview: "about one", NumberOfSeasons: 2}
	f.details["2"] = TMDBShowDetails{ID: 2, Name: "Show 2"}
	f.failDetails["2"] = true
	f.providers["1"] = []WatchProvider{{ProviderID: 8, ProviderName: "Netflix", LogoPath: "/n.png"}}

	data := f.service().ManyDetails(context.Background(), []int{1, 2}, "GB")

	// The failing id is dropped; the rest of the batch survives.
	require.Len(t, data, 1)
	enriched, ok := data["1"]
	require.True(t, ok)
	assert.Equal(t, "about one", enriched.Overview)
	assert.Equal(t, 2, enriched.NumberOfSeasons)
	require.Len(t, enriched.Providers, 1)
	assert.Equal(t, "Netflix", enriched.Providers[0].ProviderName)
}

func TestManyDetailsUnknownRegion(t *testing.T) {
	f := newFakeTMDB(t)
	f.details["1"] = TMDBShowDetails{ID: 1, Name: "Show 1"}

	data := f.service().ManyDetails(context.Background(), []int{1}, "FR")

	require.Contains(t, data, "1")
	assert.NotNil(t, data["1"].Providers)
	assert.Empty(t, data["1"].Providers)
}

func TestSearchBlankSkipsGateway(t *testing.T) {
	f := newFakeTMDB(t)
	svc := f.service()

	results, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, f.callCount("search"))
}

func TestSearch(t *testing.T) {
	f := newFakeTMDB(t)
	f.search = []TMDBShow{show(9, 7.1, 18)}

	results, err := f.service().Search(context.Background(), "severed")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 9, results[0].ID)
	assert.Equal(t, 1, f.callCount("search"))
}
