package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/releaserr/releaserr/domains/release"
	"github.com/releaserr/releaserr/integrations/jellyseerr"
	"github.com/releaserr/releaserr/integrations/omdb"
	"github.com/releaserr/releaserr/integrations/tmdb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// tvDetailWorkers bounds concurrent TMDB detail fetches during a refresh.
const tvDetailWorkers = 5

type tmdbProvider interface {
	DiscoverMovies(ctx context.Context) ([]tmdb.Result, error)
	DiscoverTV(ctx context.Context) ([]tmdb.Result, error)
	TVDetails(ctx context.Context, id int) (tmdb.TVShowDetails, error)
}

type omdbProvider interface {
	Ratings(ctx context.Context, title, year string) (omdb.Ratings, error)
}

type jellyseerrProvider interface {
	Requested(ctx context.Context) (map[jellyseerr.MediaKey]struct{}, error)
}

type releaseService struct {
	tmdb       tmdbProvider
	omdb       omdbProvider
	jellyseerr jellyseerrProvider
	hidden     release.IHiddenRepository

	mu         sync.RWMutex
	releases   []release.Release
	lastUpdate time.Time
}

func NewReleaseService(tmdbClient tmdbProvider, omdbClient omdbProvider, jellyseerrClient jellyseerrProvider, hidden release.IHiddenRepository) release.IReleaseUsecase {
	return &releaseService{
		tmdb:       tmdbClient,
		omdb:       omdbClient,
		jellyseerr: jellyseerrClient,
		hidden:     hidden,
	}
}

// Releases returns the current dashboard list. The slice is a copy, callers
// may hold it across refreshes.
func (s *releaseService) Releases(ctx context.Context) []release.Release {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]release.Release, len(s.releases))
	copy(out, s.releases)
	return out
}

func (s *releaseService) LastUpdate(ctx context.Context) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Refresh rebuilds the release list from TMDB, enriches it with OMDB ratings
// and season counts, drops already requested and hidden media, and swaps the
// result in atomically. Enrichment and filter failures degrade, a refresh
// only fails when discovery itself fails.
func (s *releaseService) Refresh(ctx context.Context) error {
	jobID := uuid.NewString()[:8]
	started := time.Now()
	logrus.Infof("[RELEASE] refresh %s started", jobID)

	movies, err := s.fetchMovies(ctx)
	if err != nil {
		return err
	}

	shows, err := s.fetchTVShows(ctx)
	if err != nil {
		return err
	}

	releases := append(movies, shows...)
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].ReleaseDate > releases[j].ReleaseDate
	})

	releases = s.filterRequested(ctx, jobID, releases)
	releases = s.filterHidden(ctx, jobID, releases)

	s.mu.Lock()
	s.releases = releases
	s.lastUpdate = time.Now()
	s.mu.Unlock()

	logrus.Infof("[RELEASE] refresh %s finished with %d releases in %s", jobID, len(releases), time.Since(started).Round(time.Millisecond))
	return nil
}

func (s *releaseService) fetchMovies(ctx context.Context) ([]release.Release, error) {
	results, err := s.tmdb.DiscoverMovies(ctx)
	if err != nil {
		return nil, err
	}

	releases := make([]release.Release, 0, len(results))
	for _, r := range results {
		item := toRelease(r, release.MediaTypeMovie)

		ratings, err := s.omdb.Ratings(ctx, item.Title, yearOf(item.ReleaseDate))
		if err != nil {
			logrus.Warnf("[RELEASE] ratings lookup failed for %q: %v", item.Title, err)
		} else {
			item.IMDBRating = ratings.IMDBRating
			item.Metascore = ratings.Metascore
			item.RottenTomatoes = ratings.RottenTomatoes()
		}

		releases = append(releases, item)
	}
	return releases, nil
}

func (s *releaseService) fetchTVShows(ctx context.Context) ([]release.Release, error) {
	results, err := s.tmdb.DiscoverTV(ctx)
	if err != nil {
		return nil, err
	}

	releases := make([]release.Release, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tvDetailWorkers)

	for i, r := range results {
		i, r := i, r
		g.Go(func() error {
			item := toRelease(r, release.MediaTypeTV)

			details, err := s.tmdb.TVDetails(gctx, r.ID)
			if err != nil {
				logrus.Warnf("[RELEASE] season lookup failed for %q: %v", item.Title, err)
			} else {
				item.NumberOfSeasons = details.NumberOfSeasons
			}

			releases[i] = item
			return nil
		})
	}
	_ = g.Wait()

	return releases, nil
}

func (s *releaseService) filterRequested(ctx context.Context, jobID string, releases []release.Release) []release.Release {
	requested, err := s.jellyseerr.Requested(ctx)
	if err != nil {
		logrus.Errorf("[RELEASE] refresh %s could not list requested media, keeping unfiltered: %v", jobID, err)
		return releases
	}

	kept := releases[:0]
	for _, r := range releases {
		if _, ok := requested[jellyseerr.MediaKey{Type: r.MediaType, TMDBID: r.ID}]; !ok {
			kept = append(kept, r)
		}
	}
	return kept
}

func (s *releaseService) filterHidden(ctx context.Context, jobID string, releases []release.Release) []release.Release {
	hidden, err := s.hidden.All(ctx)
	if err != nil {
		logrus.Errorf("[RELEASE] refresh %s could not load hidden media, keeping unfiltered: %v", jobID, err)
		return releases
	}

	hiddenSet := make(map[jellyseerr.MediaKey]struct{}, len(hidden))
	for _, h := range hidden {
		hiddenSet[jellyseerr.MediaKey{Type: h.MediaType, TMDBID: h.TMDBID}] = struct{}{}
	}

	kept := releases[:0]
	for _, r := range releases {
		if _, ok := hiddenSet[jellyseerr.MediaKey{Type: r.MediaType, TMDBID: r.ID}]; !ok {
			kept = append(kept, r)
		}
	}
	return kept
}

// Hide persists a hide and drops the media from the current list.
func (s *releaseService) Hide(ctx context.Context, mediaType string, tmdbID int) error {
	if err := s.hidden.Add(ctx, mediaType, tmdbID); err != nil {
		return err
	}
	s.Remove(ctx, mediaType, tmdbID)
	return nil
}

// Remove drops one media item from the in-memory list without touching
// persistence. Used after a successful Jellyseerr request.
func (s *releaseService) Remove(ctx context.Context, mediaType string, tmdbID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.releases[:0]
	for _, r := range s.releases {
		if r.MediaType != mediaType || r.ID != tmdbID {
			kept = append(kept, r)
		}
	}
	s.releases = kept
}

func (s *releaseService) StartBackgroundRefresh(ctx context.Context, interval time.Duration) {
	logrus.Infof("[RELEASE] starting background refresh loop (interval: %s)", interval)
	ticker := time.NewTicker(interval)

	go func() {
		if err := s.Refresh(ctx); err != nil {
			logrus.Errorf("[RELEASE] initial refresh failed: %v", err)
		}

		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					logrus.Errorf("[RELEASE] scheduled refresh failed: %v", err)
				}
			}
		}
	}()
}

func toRelease(r tmdb.Result, mediaType string) release.Release {
	title := r.Title
	date := r.ReleaseDate
	if mediaType == release.MediaTypeTV {
		title = r.Name
		date = r.FirstAirDate
	}

	return release.Release{
		ID:          r.ID,
		Title:       title,
		ReleaseDate: date,
		MediaType:   mediaType,
		VoteAverage: r.VoteAverage,
		VoteCount:   r.VoteCount,
		PosterURL:   tmdb.PosterURL(r.PosterPath),
		TMDBURL:     tmdb.MediaURL(mediaType, r.ID),
		Overview:    r.Overview,
	}
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
