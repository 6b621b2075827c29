// Package tmdb is the client for The Movie Database discover and detail
// endpoints. TV show details are served read-through from a TTL cache with
// singleflight dedup so a burst of refreshes costs one upstream call per show.
package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/releaserr/releaserr/pkg/httpclient"
	"github.com/releaserr/releaserr/pkg/ttlcache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/w500"
	siteBaseURL    = "https://www.themoviedb.org"

	placeholderPoster = "https://via.placeholder.com/500x750"

	// Streaming providers the dashboard tracks (Netflix, Prime, Disney+,
	// Max, Apple TV+, Hulu, Peacock, Crunchyroll), US region.
	watchProviders = "8|9|337|1899|350|15|619|283"

	discoverMoviesEndpoint = "discover/movie?sort_by=release_date.desc&with_watch_providers=" + watchProviders + "&watch_region=US&vote_count.gte=1&vote_average.gte=1&page=1"
	discoverTVEndpoint     = "discover/tv?sort_by=first_air_date.desc&with_watch_providers=" + watchProviders + "&watch_region=US&with_watch_monetization_types=flatrate&vote_count.gte=1&vote_average.gte=1&page=1"
)

// Result is one entry of a discover response. Movies populate Title and
// ReleaseDate; TV shows populate Name and FirstAirDate.
type Result struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float32 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	PosterPath   string  `json:"poster_path"`
	Overview     string  `json:"overview"`
}

type discoverResponse struct {
	Results []Result `json:"results"`
}

// TVShowDetails is the subset of the TV detail endpoint the dashboard needs.
type TVShowDetails struct {
	NumberOfSeasons int `json:"number_of_seasons"`
}

type Client struct {
	api     *httpclient.Client
	apiKey  string
	baseURL string

	details *ttlcache.Cache[TVShowDetails]
	sf      singleflight.Group
}

func NewClient(api *httpclient.Client, apiKey string, details *ttlcache.Cache[TVShowDetails]) *Client {
	return &Client{
		api:     api,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		details: details,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	url := fmt.Sprintf("%s/%s%sapi_key=%s&language=en-US", c.baseURL, endpoint, separator, c.apiKey)
	logrus.Debugf("[TMDB] GET %s", strings.ReplaceAll(url, c.apiKey, "API_KEY"))
	return c.api.GetJSON(ctx, url, nil, out)
}

// DiscoverMovies returns the newest streaming movie releases.
func (c *Client) DiscoverMovies(ctx context.Context) ([]Result, error) {
	var resp discoverResponse
	if err := c.get(ctx, discoverMoviesEndpoint, &resp); err != nil {
		return nil, fmt.Errorf("tmdb discover movies: %w", err)
	}
	return resp.Results, nil
}

// DiscoverTV returns the newest streaming TV releases.
func (c *Client) DiscoverTV(ctx context.Context) ([]Result, error) {
	var resp discoverResponse
	if err := c.get(ctx, discoverTVEndpoint, &resp); err != nil {
		return nil, fmt.Errorf("tmdb discover tv: %w", err)
	}
	return resp.Results, nil
}

// TVDetails fetches detail data for one show, read-through cached. Concurrent
// lookups for the same show share a single upstream request.
func (c *Client) TVDetails(ctx context.Context, id int) (TVShowDetails, error) {
	key := strconv.Itoa(id)
	if cached, ok := c.details.Get(key); ok {
		logrus.Debugf("[TMDB] cache hit for tv details %d", id)
		return cached, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		logrus.Debugf("[TMDB] cache miss for tv show %d, fetching from API", id)
		var details TVShowDetails
		if err := c.get(ctx, "tv/"+key, &details); err != nil {
			return TVShowDetails{}, fmt.Errorf("tmdb tv details %d: %w", id, err)
		}
		c.details.Put(key, details)
		return details, nil
	})
	if err != nil {
		return TVShowDetails{}, err
	}
	return v.(TVShowDetails), nil
}

// PosterURL resolves a TMDB poster path to a full image URL, falling back to
// a placeholder when the item has no poster.
func PosterURL(posterPath string) string {
	if posterPath == "" {
		return placeholderPoster
	}
	return imageBaseURL + posterPath
}

// MediaURL returns the public TMDB page for a movie or TV show.
func MediaURL(mediaType string, id int) string {
	return fmt.Sprintf("%s/%s/%d", siteBaseURL, mediaType, id)
}
