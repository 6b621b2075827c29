package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/releaserr/releaserr/pkg/ratelimit"
	"github.com/releaserr/releaserr/pkg/utils"
	"github.com/sirupsen/logrus"
)

// RateLimit rejects requests once the client's token bucket is empty. Buckets
// are keyed by client IP.
func RateLimit(limiter *ratelimit.Limiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !limiter.Allow(ctx.IP()) {
			logrus.Warnf("[REST] rate limit exceeded for %s on %s", ctx.IP(), ctx.Path())
			return ctx.Status(fiber.StatusTooManyRequests).JSON(utils.ResponseData{
				Status:  fiber.StatusTooManyRequests,
				Code:    "RATE_LIMIT_EXCEEDED",
				Message: "Too many requests, slow down",
			})
		}
		return ctx.Next()
	}
}
