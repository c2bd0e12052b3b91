package middleware

import (
	"runtime/debug"

	"shrnq/dtos/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Caught panic",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.String("stack", string(debug.Stack())))

				err = c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
					Status: response.StatusError,
					Error:  "Unknown Error",
				})
			}
		}()
		return c.Next()
	}
}
