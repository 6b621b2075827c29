package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	domainRelease "github.com/releaserr/releaserr/domains/release"
	domainRequest "github.com/releaserr/releaserr/domains/request"
	pkgError "github.com/releaserr/releaserr/pkg/error"
	"github.com/releaserr/releaserr/pkg/utils"
)

type Request struct {
	Service  domainRequest.IRequestUsecase
	Releases domainRelease.IReleaseUsecase
}

func InitRestRequest(api fiber.Router, service domainRequest.IRequestUsecase, releases domainRelease.IReleaseUsecase) Request {
	rest := Request{Service: service, Releases: releases}
	api.Post("/request/:media_type/:id", rest.Submit)
	api.Post("/hide/:media_type/:id", rest.Hide)

	return rest
}

type submitBody struct {
	Seasons []int `json:"seasons"`
}

func (handler *Request) Submit(c *fiber.Ctx) error {
	mediaType, tmdbID := mediaParams(c)

	var body submitBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			panic(pkgError.ValidationError("invalid request body: " + err.Error()))
		}
	}

	err := handler.Service.Submit(c.UserContext(), domainRequest.MediaRequest{
		MediaType: mediaType,
		TMDBID:    tmdbID,
		Seasons:   body.Seasons,
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Media requested successfully",
	})
}

func (handler *Request) Hide(c *fiber.Ctx) error {
	mediaType, tmdbID := mediaParams(c)

	err := handler.Releases.Hide(c.UserContext(), mediaType, tmdbID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Media hidden successfully",
	})
}

func mediaParams(c *fiber.Ctx) (string, int) {
	mediaType := c.Params("media_type")
	if mediaType != domainRelease.MediaTypeMovie && mediaType != domainRelease.MediaTypeTV {
		panic(pkgError.ValidationError("media_type must be movie or tv"))
	}

	tmdbID, err := strconv.Atoi(c.Params("id"))
	if err != nil || tmdbID < 1 {
		panic(pkgError.ValidationError("id must be a positive integer"))
	}
	return mediaType, tmdbID
}
