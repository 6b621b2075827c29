// Package omdb fetches movie ratings from the OMDB API. Lookups are keyed by
// title and year and cached, since OMDB's free tier is tightly rate limited.
package omdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/releaserr/releaserr/pkg/httpclient"
	"github.com/releaserr/releaserr/pkg/ttlcache"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://www.omdbapi.com"

// Rating is one source/value pair from OMDB's Ratings list, e.g.
// {"Source": "Rotten Tomatoes", "Value": "93%"}.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Ratings holds the rating fields the dashboard shows. Empty strings mean the
// source had no rating for the title.
type Ratings struct {
	IMDBRating string   `json:"imdbRating,omitempty"`
	Metascore  string   `json:"Metascore,omitempty"`
	Ratings    []Rating `json:"Ratings,omitempty"`
}

// RottenTomatoes returns the Rotten Tomatoes score, or "" when absent.
func (r Ratings) RottenTomatoes() string {
	for _, rating := range r.Ratings {
		if rating.Source == "Rotten Tomatoes" {
			return rating.Value
		}
	}
	return ""
}

// clean drops OMDB's "N/A" placeholders so absent ratings stay absent.
func (r Ratings) clean() Ratings {
	if r.IMDBRating == "N/A" {
		r.IMDBRating = ""
	}
	if r.Metascore == "N/A" {
		r.Metascore = ""
	}
	kept := r.Ratings[:0]
	for _, rating := range r.Ratings {
		if rating.Value != "" && rating.Value != "N/A" {
			kept = append(kept, rating)
		}
	}
	r.Ratings = kept
	return r
}

type Client struct {
	api     *httpclient.Client
	apiKey  string
	baseURL string

	cache *ttlcache.Cache[Ratings]
}

func NewClient(api *httpclient.Client, apiKey string, cache *ttlcache.Cache[Ratings]) *Client {
	return &Client{
		api:     api,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		cache:   cache,
	}
}

// Ratings looks up ratings for a title, read-through cached by title and year.
func (c *Client) Ratings(ctx context.Context, title, year string) (Ratings, error) {
	key := cacheKey(title, year)
	if cached, ok := c.cache.Get(key); ok {
		logrus.Debugf("[OMDB] cache hit for %s", key)
		return cached, nil
	}

	logrus.Debugf("[OMDB] cache miss for %s, fetching from API", key)
	endpoint := fmt.Sprintf("%s/?apikey=%s&t=%s&y=%s", c.baseURL, c.apiKey, url.QueryEscape(title), url.QueryEscape(year))

	var ratings Ratings
	if err := c.api.GetJSON(ctx, endpoint, nil, &ratings); err != nil {
		return Ratings{}, fmt.Errorf("omdb ratings for %q (%s): %w", title, year, err)
	}

	ratings = ratings.clean()
	c.cache.Put(key, ratings)
	return ratings, nil
}

func cacheKey(title, year string) string {
	return strings.ToLower(title) + "_" + year
}
