package request

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MediaRequest is a submission to Jellyseerr. Seasons only applies to TV and
// an empty list means every season.
type MediaRequest struct {
	MediaType string `json:"media_type"`
	TMDBID    int    `json:"tmdb_id"`
	Seasons   []int  `json:"seasons,omitempty"`
}

func (r MediaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MediaType, validation.Required, validation.In("movie", "tv")),
		validation.Field(&r.TMDBID, validation.Required, validation.Min(1)),
		validation.Field(&r.Seasons, validation.Each(validation.Min(1))),
	)
}

type IRequestUsecase interface {
	Submit(ctx context.Context, req MediaRequest) error
}
