package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/releaserr/releaserr/pkg/utils"
)

// CSRF requires a non-empty X-CSRF-Token header on mutating requests. The
// token is issued with the dashboard page; same-origin scripts echo it back.
func CSRF() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		switch ctx.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return ctx.Next()
		}

		if ctx.Get("X-CSRF-Token") == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(utils.ResponseData{
				Status:  fiber.StatusForbidden,
				Code:    "CSRF_TOKEN_MISSING",
				Message: "Missing CSRF token",
			})
		}
		return ctx.Next()
	}
}
