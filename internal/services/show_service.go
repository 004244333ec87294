package services

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
)

// Mode selects a viewing mood. Food mode narrows candidates to genres
// that pair well with eating; freetime allows everything.
type Mode string

const (
	ModeNone     Mode = ""
	ModeFood     Mode = "food"
	ModeFreetime Mode = "freetime"
)

// MinRating is the floor applied to every candidate list.
const MinRating = 6.0

// FoodGenres are the TV genre ids allowed in food mode:
// Comedy, Reality, Animation, Talk.
var FoodGenres = []int{35, 10764, 16, 10767}

// AllGenres is the fixed set offered by the genre picker.
var AllGenres = []Genre{
	{ID: 35, Name: "Comedy"},
	{ID: 18, Name: "Drama"},
	{ID: 10759, Name: "Action & Adventure"},
	{ID: 9648, Name: "Mystery"},
	{ID: 10765, Name: "Sci-Fi & Fantasy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 16, Name: "Animation"},
	{ID: 10764, Name: "Reality"},
	{ID: 10767, Name: "Talk"},
}

// Show is the fully resolved pick returned to the client.
type Show struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Overview        string  `json:"overview"`
	PosterPath      *string `json:"poster_path"`
	VoteAverage     float64 `json:"vote_average"`
	FirstAirDate    string  `json:"first_air_date"`
	Genres          []Genre `json:"genres"`
	EpisodeRunTime  []int   `json:"episode_run_time"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	IsTrending      bool    `json:"isTrending"`
}

// EnrichedShow is a show detail record plus its streaming providers,
// produced for watchlist rows.
type EnrichedShow struct {
	Overview        string          `json:"overview"`
	VoteAverage     float64         `json:"vote_average"`
	FirstAirDate    string          `json:"first_air_date"`
	Genres          []Genre         `json:"genres"`
	NumberOfSeasons int             `json:"number_of_seasons"`
	EpisodeRunTime  []int           `json:"episode_run_time"`
	Providers       []WatchProvider `json:"providers"`
}

// ShowService implements show discovery on top of the TMDB gateway.
type ShowService struct {
	tmdb *TMDBService
}

// NewShowService creates a new ShowService
func NewShowService(tmdb *TMDBService) *ShowService {
	return &ShowService{tmdb: tmdb}
}

// filterByRating keeps shows at or above the rating floor.
func filterByRating(shows []TMDBShow) []TMDBShow {
	out := make([]TMDBShow, 0, len(shows))
	for _, show := range shows {
		if show.VoteAverage >= MinRating {
			out = append(out, show)
		}
	}
	return out
}

// filterByMode applies the mood filter. Only food mode restricts the
// list; freetime (and any unknown mode) allows all genres.
func filterByMode(shows []TMDBShow, mode Mode) []TMDBShow {
	if mode != ModeFood {
		return shows
	}

	allowed := make(map[int]struct{}, len(FoodGenres))
	for _, id := range FoodGenres {
		allowed[id] = struct{}{}
	}

	out := make([]TMDBShow, 0, len(shows))
	for _, show := range shows {
		for _, id := range show.GenreIDs {
			if _, ok := allowed[id]; ok {
				out = append(out, show)
				break
			}
		}
	}
	return out
}

// filterByGenre keeps shows tagged with the given genre. Zero means no
// genre filter.
func filterByGenre(shows []TMDBShow, genreID int) []TMDBShow {
	if genreID == 0 {
		return shows
	}

	out := make([]TMDBShow, 0, len(shows))
	for _, show := range shows {
		for _, id := range show.GenreIDs {
			if id == genreID {
				out = append(out, show)
				break
			}
		}
	}
	return out
}

// dedupeByID collapses duplicate ids. Each entry keeps the position of
// its first occurrence but the payload of its last, matching a keyed map
// built in list order.
func dedupeByID(shows []TMDBShow) []TMDBShow {
	index := make(map[int]int, len(shows))
	out := make([]TMDBShow, 0, len(shows))
	for _, show := range shows {
		if at, seen := index[show.ID]; seen {
			out[at] = show
			continue
		}
		index[show.ID] = len(out)
		out = append(out, show)
	}
	return out
}

// pickRandom draws one show uniformly at random. An empty list yields
// nil; that is a normal outcome, not an error.
func pickRandom(shows []TMDBShow) *TMDBShow {
	if len(shows) == 0 {
		return nil
	}
	return &shows[rand.IntN(len(shows))]
}

// TrendingIDs returns the set of ids trending this week, used to tag the
// final pick.
func (s *ShowService) TrendingIDs(ctx context.Context) (map[int]struct{}, error) {
	trending, err := s.tmdb.Trending(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[int]struct{}, len(trending))
	for _, show := range trending {
		ids[show.ID] = struct{}{}
	}
	return ids, nil
}

// RandomShow aggregates trending and popular listings, filters them by
// rating, mood and genre, and resolves one uniform-random pick to its
// full detail record. A nil show with a nil error means nothing matched.
func (s *ShowService) RandomShow(ctx context.Context, mode Mode, genreID int, trendingIDs map[int]struct{}) (*Show, error) {
	var trending, popular1, popular2 []TMDBShow

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		trending, err = s.tmdb.Trending(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		popular1, err = s.tmdb.Popular(ctx, 1)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		popular2, err = s.tmdb.Popular(ctx, 2)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	all := make([]TMDBShow, 0, len(trending)+len(popular1)+len(popular2))
	all = append(all, trending...)
	all = append(all, popular1...)
	all = append(all, popular2...)

	candidates := dedupeByID(all)
	candidates = filterByRating(candidates)
	candidates = filterByMode(candidates, mode)
	candidates = filterByGenre(candidates, genreID)

	selected := pickRandom(candidates)
	if selected == nil {
		return nil, nil
	}

	details, err := s.tmdb.ShowDetails(ctx, selected.ID)
	if err != nil {
		return nil, err
	}

	_, isTrending := trendingIDs[details.ID]

	return &Show{
		ID:              details.ID,
		Name:            details.Name,
		Overview:        details.Overview,
		PosterPath:      details.PosterPath,
		VoteAverage:     details.VoteAverage,
		FirstAirDate:    details.FirstAirDate,
		Genres:          details.Genres,
		EpisodeRunTime:  details.EpisodeRunTime,
		NumberOfSeasons: details.NumberOfSeasons,
		IsTrending:      isTrending,
	}, nil
}

// enrichedShow resolves one show's detail and providers in parallel.
func (s *ShowService) enrichedShow(ctx context.Context, id int, region string) (*EnrichedShow, error) {
	var details *TMDBShowDetails
	var providers []WatchProvider

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		details, err = s.tmdb.ShowDetails(ctx, id)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		providers, err = s.tmdb.FlatrateProviders(ctx, id, region)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return &EnrichedShow{
		Overview:        details.Overview,
		VoteAverage:     details.VoteAverage,
		FirstAirDate:    details.FirstAirDate,
		Genres:          details.Genres,
		NumberOfSeasons: details.NumberOfSeasons,
		EpisodeRunTime:  details.EpisodeRunTime,
		Providers:       providers,
	}, nil
}

// ManyDetails fetches enriched detail for each id concurrently. Ids whose
// upstream calls fail are left out of the result instead of failing the
// batch; the caller treats absence as "enrichment unavailable".
func (s *ShowService) ManyDetails(ctx context.Context, ids []int, region string) map[string]EnrichedShow {
	var mu sync.Mutex
	data := make(map[string]EnrichedShow, len(ids))

	var wg conc.WaitGroup
	for _, id := range ids {
		wg.Go(func() {
			enriched, err := s.enrichedShow(ctx, id, region)
			if err != nil {
				return
			}
			mu.Lock()
			data[strconv.Itoa(id)] = *enriched
			mu.Unlock()
		})
	}
	wg.Wait()

	return data
}

// Search returns raw results for a text query. Blank queries short-circuit
// without touching the network.
func (s *ShowService) Search(ctx context.Context, query string) ([]TMDBShow, error) {
	if strings.TrimSpace(query) == "" {
		return []TMDBShow{}, nil
	}
	return s.tmdb.SearchTV(ctx, query)
}
