package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/releaserr/releaserr/domains/release"
	"github.com/releaserr/releaserr/integrations/jellyseerr"
	"github.com/releaserr/releaserr/integrations/omdb"
	"github.com/releaserr/releaserr/integrations/tmdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTMDB struct {
	movies    []tmdb.Result
	tv        []tmdb.Result
	details   map[int]tmdb.TVShowDetails
	moviesErr error
	tvErr     error
}

func (f *fakeTMDB) DiscoverMovies(ctx context.Context) ([]tmdb.Result, error) {
	return f.movies, f.moviesErr
}

func (f *fakeTMDB) DiscoverTV(ctx context.Context) ([]tmdb.Result, error) {
	return f.tv, f.tvErr
}

func (f *fakeTMDB) TVDetails(ctx context.Context, id int) (tmdb.TVShowDetails, error) {
	d, ok := f.details[id]
	if !ok {
		return tmdb.TVShowDetails{}, errors.New("no details")
	}
	return d, nil
}

type fakeOMDB struct {
	ratings map[string]omdb.Ratings
	err     error
}

func (f *fakeOMDB) Ratings(ctx context.Context, title, year string) (omdb.Ratings, error) {
	if f.err != nil {
		return omdb.Ratings{}, f.err
	}
	return f.ratings[title], nil
}

type fakeJellyseerr struct {
	requested map[jellyseerr.MediaKey]struct{}
	err       error
}

func (f *fakeJellyseerr) Requested(ctx context.Context) (map[jellyseerr.MediaKey]struct{}, error) {
	return f.requested, f.err
}

type fakeHiddenRepo struct {
	hidden []release.HiddenMedia
	addErr error
	allErr error
}

func (f *fakeHiddenRepo) Add(ctx context.Context, mediaType string, tmdbID int) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.hidden = append(f.hidden, release.HiddenMedia{MediaType: mediaType, TMDBID: tmdbID, HiddenAt: time.Now()})
	return nil
}

func (f *fakeHiddenRepo) All(ctx context.Context) ([]release.HiddenMedia, error) {
	return f.hidden, f.allErr
}

func newTestService(t *testing.T) (*releaseService, *fakeTMDB, *fakeOMDB, *fakeJellyseerr, *fakeHiddenRepo) {
	t.Helper()
	tmdbFake := &fakeTMDB{
		movies: []tmdb.Result{
			{ID: 1, Title: "Heat", ReleaseDate: "2025-08-01", VoteAverage: 8.1, PosterPath: "/heat.jpg"},
		},
		tv: []tmdb.Result{
			{ID: 2, Name: "Severance", FirstAirDate: "2025-08-10"},
		},
		details: map[int]tmdb.TVShowDetails{2: {NumberOfSeasons: 3}},
	}
	omdbFake := &fakeOMDB{ratings: map[string]omdb.Ratings{
		"Heat": {
			IMDBRating: "8.3",
			Metascore:  "76",
			Ratings:    []omdb.Rating{{Source: "Rotten Tomatoes", Value: "89%"}},
		},
	}}
	jellyseerrFake := &fakeJellyseerr{requested: map[jellyseerr.MediaKey]struct{}{}}
	hiddenFake := &fakeHiddenRepo{}

	svc := NewReleaseService(tmdbFake, omdbFake, jellyseerrFake, hiddenFake).(*releaseService)
	return svc, tmdbFake, omdbFake, jellyseerrFake, hiddenFake
}

func TestReleaseService_RefreshBuildsEnrichedList(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))

	releases := svc.Releases(ctx)
	require.Len(t, releases, 2)

	// Newest first: the show aired after the movie.
	show := releases[0]
	assert.Equal(t, "Severance", show.Title)
	assert.Equal(t, release.MediaTypeTV, show.MediaType)
	assert.Equal(t, 3, show.NumberOfSeasons)
	assert.Equal(t, "https://www.themoviedb.org/tv/2", show.TMDBURL)

	movie := releases[1]
	assert.Equal(t, "Heat", movie.Title)
	assert.Equal(t, "8.3", movie.IMDBRating)
	assert.Equal(t, "76", movie.Metascore)
	assert.Equal(t, "89%", movie.RottenTomatoes)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/heat.jpg", movie.PosterURL)

	assert.WithinDuration(t, time.Now(), svc.LastUpdate(ctx), time.Second)
}

func TestReleaseService_RefreshFiltersRequestedMedia(t *testing.T) {
	svc, _, _, jellyseerrFake, _ := newTestService(t)
	jellyseerrFake.requested = map[jellyseerr.MediaKey]struct{}{
		{Type: "movie", TMDBID: 1}: {},
	}

	require.NoError(t, svc.Refresh(context.Background()))

	releases := svc.Releases(context.Background())
	require.Len(t, releases, 1)
	assert.Equal(t, "Severance", releases[0].Title)
}

func TestReleaseService_RefreshFiltersHiddenMedia(t *testing.T) {
	svc, _, _, _, hiddenFake := newTestService(t)
	hiddenFake.hidden = []release.HiddenMedia{{MediaType: "tv", TMDBID: 2}}

	require.NoError(t, svc.Refresh(context.Background()))

	releases := svc.Releases(context.Background())
	require.Len(t, releases, 1)
	assert.Equal(t, "Heat", releases[0].Title)
}

func TestReleaseService_RefreshDegradesWhenFiltersFail(t *testing.T) {
	svc, _, _, jellyseerrFake, hiddenFake := newTestService(t)
	jellyseerrFake.err = errors.New("jellyseerr down")
	hiddenFake.allErr = errors.New("db down")

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Len(t, svc.Releases(context.Background()), 2)
}

func TestReleaseService_RefreshDegradesWhenEnrichmentFails(t *testing.T) {
	svc, tmdbFake, omdbFake, _, _ := newTestService(t)
	omdbFake.err = errors.New("omdb down")
	tmdbFake.details = nil

	require.NoError(t, svc.Refresh(context.Background()))

	releases := svc.Releases(context.Background())
	require.Len(t, releases, 2)
	assert.Empty(t, releases[1].IMDBRating)
	assert.Zero(t, releases[0].NumberOfSeasons)
}

func TestReleaseService_RefreshFailsWhenDiscoveryFails(t *testing.T) {
	svc, tmdbFake, _, _, _ := newTestService(t)
	tmdbFake.moviesErr = errors.New("tmdb down")

	require.Error(t, svc.Refresh(context.Background()))
	assert.Empty(t, svc.Releases(context.Background()))
	assert.True(t, svc.LastUpdate(context.Background()).IsZero())
}

func TestReleaseService_HidePersistsAndRemoves(t *testing.T) {
	svc, _, _, _, hiddenFake := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	require.NoError(t, svc.Hide(ctx, "movie", 1))

	require.Len(t, hiddenFake.hidden, 1)
	assert.Equal(t, 1, hiddenFake.hidden[0].TMDBID)

	releases := svc.Releases(ctx)
	require.Len(t, releases, 1)
	assert.Equal(t, "Severance", releases[0].Title)
}

func TestReleaseService_HideFailsWhenPersistenceFails(t *testing.T) {
	svc, _, _, _, hiddenFake := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))
	hiddenFake.addErr = errors.New("db down")

	require.Error(t, svc.Hide(ctx, "movie", 1))
	assert.Len(t, svc.Releases(ctx), 2, "list must be untouched when the hide is not persisted")
}

func TestReleaseService_RemoveMatchesTypeAndID(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	// Same ID, wrong type: nothing happens.
	svc.Remove(ctx, "movie", 2)
	assert.Len(t, svc.Releases(ctx), 2)

	svc.Remove(ctx, "tv", 2)
	releases := svc.Releases(ctx)
	require.Len(t, releases, 1)
	assert.Equal(t, "Heat", releases[0].Title)
}

func TestReleaseService_ReleasesReturnsACopy(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	releases := svc.Releases(ctx)
	releases[0].Title = "mutated"

	assert.NotEqual(t, "mutated", svc.Releases(ctx)[0].Title)
}
