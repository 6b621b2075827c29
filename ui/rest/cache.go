package rest

import (
	"github.com/gofiber/fiber/v2"
	domainCache "github.com/releaserr/releaserr/domains/cache"
	"github.com/releaserr/releaserr/pkg/utils"
)

type Cache struct {
	Service domainCache.ICacheUsecase
}

func InitRestCache(api fiber.Router, service domainCache.ICacheUsecase) Cache {
	rest := Cache{Service: service}
	api.Get("/cache/stats", rest.Stats)
	api.Post("/cache/save", rest.Save)
	api.Post("/cache/clear", rest.Clear)

	return rest
}

func (handler *Cache) Stats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: handler.Service.Stats(c.UserContext()),
	})
}

func (handler *Cache) Save(c *fiber.Ctx) error {
	err := handler.Service.SaveNow(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache saved successfully",
	})
}

func (handler *Cache) Clear(c *fiber.Ctx) error {
	handler.Service.Clear(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleared successfully",
	})
}
