package usecase

import (
	"context"

	"github.com/releaserr/releaserr/domains/release"
	"github.com/releaserr/releaserr/domains/request"
	pkgError "github.com/releaserr/releaserr/pkg/error"
	"github.com/sirupsen/logrus"
)

type mediaRequester interface {
	RequestMedia(ctx context.Context, mediaType string, tmdbID int, seasons []int) error
}

type requestService struct {
	jellyseerr mediaRequester
	releases   release.IReleaseUsecase
}

func NewRequestService(jellyseerrClient mediaRequester, releases release.IReleaseUsecase) request.IRequestUsecase {
	return &requestService{
		jellyseerr: jellyseerrClient,
		releases:   releases,
	}
}

// Submit validates the request, forwards it to Jellyseerr, and on success
// drops the media from the dashboard.
func (s *requestService) Submit(ctx context.Context, req request.MediaRequest) error {
	if err := req.Validate(); err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if err := s.jellyseerr.RequestMedia(ctx, req.MediaType, req.TMDBID, req.Seasons); err != nil {
		return pkgError.UpstreamError(err.Error())
	}

	s.releases.Remove(ctx, req.MediaType, req.TMDBID)
	logrus.Infof("[REQUEST] %s %d submitted to jellyseerr", req.MediaType, req.TMDBID)
	return nil
}
