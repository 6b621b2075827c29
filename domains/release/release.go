package release

import (
	"context"
	"time"
)

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// Release is one dashboard entry: a movie or TV show enriched with ratings
// and links. Rating fields are empty strings when the source had none.
type Release struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	ReleaseDate     string  `json:"release_date"`
	MediaType       string  `json:"media_type"`
	VoteAverage     float32 `json:"vote_average"`
	VoteCount       int     `json:"vote_count"`
	PosterURL       string  `json:"poster_url"`
	TMDBURL         string  `json:"tmdb_url"`
	NumberOfSeasons int     `json:"number_of_seasons,omitempty"`
	Overview        string  `json:"overview"`
	IMDBRating      string  `json:"imdb_rating,omitempty"`
	Metascore       string  `json:"metascore,omitempty"`
	RottenTomatoes  string  `json:"rotten_tomatoes,omitempty"`
}

// HiddenMedia is a release the user hid from the dashboard. Hides are
// persisted so they survive restarts.
type HiddenMedia struct {
	MediaType string    `json:"media_type"`
	TMDBID    int       `json:"tmdb_id"`
	HiddenAt  time.Time `json:"hidden_at"`
}

type IReleaseUsecase interface {
	Releases(ctx context.Context) []Release
	LastUpdate(ctx context.Context) time.Time
	Refresh(ctx context.Context) error
	Hide(ctx context.Context, mediaType string, tmdbID int) error
	Remove(ctx context.Context, mediaType string, tmdbID int)
	StartBackgroundRefresh(ctx context.Context, interval time.Duration)
}

type IHiddenRepository interface {
	Add(ctx context.Context, mediaType string, tmdbID int) error
	All(ctx context.Context) ([]HiddenMedia, error)
}
